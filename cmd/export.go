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
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
)

// exportCmd writes the library state (collections, videos, playlists) as an
// NDJSON backup. Media blobs are not included; back up the media directory
// separately.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export library state as an NDJSON backup",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)
		if outputPath == "" {
			outputPath = defaultExportFilename(gzipEnabled)
		}
		gzipEnabled = wantsGzip(outputPath, gzipEnabled)

		container, cleanup, err := app.Initialize()
		if err != nil {
			return fmt.Errorf("initialize application: %w", err)
		}
		defer cleanup()

		writer, closeFns, err := openBackupWriter(cmd, outputPath, gzipEnabled)
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

		summary, err := container.Backup.Export(cmd.Context(), writer)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		cmd.PrintErrf("exported %d collections, %d videos, %d playlists to %s\n",
			summary.Collections, summary.Videos, summary.Playlists, outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "output path ('-' for stdout, default: timestamped file)")
	exportCmd.Flags().Bool("gzip", false, "gzip the output stream")
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
}
