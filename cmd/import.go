/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/cliploop/internal/app"
)

const (
	importInputKey = "backup.import.input"
	importGzipKey  = "backup.import.gzip"
)

// importCmd restores an NDJSON backup into the configured database. Records
// with existing ids are overwritten.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore library state from an NDJSON backup",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		inputPath := viper.GetString(importInputKey)
		if inputPath == "" {
			return fmt.Errorf("--input is required ('-' for stdin)")
		}
		gzipEnabled := wantsGzip(inputPath, viper.GetBool(importGzipKey))

		container, cleanup, err := app.Initialize()
		if err != nil {
			return fmt.Errorf("initialize application: %w", err)
		}
		defer cleanup()

		reader, closeFns, err := openBackupReader(cmd, inputPath, gzipEnabled)
		if err != nil {
			return err
		}
		defer func() {
			for _, closer := range closeFns {
				if cerr := closer(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}()

		summary, err := container.Backup.Import(cmd.Context(), reader)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		container.Store.Flush()
		cmd.PrintErrf("imported %d collections, %d videos, %d playlists from %s\n",
			summary.Collections, summary.Videos, summary.Playlists, inputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "input path ('-' for stdin)")
	importCmd.Flags().Bool("gzip", false, "treat the input as gzip even without a .gz suffix")
	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
}
