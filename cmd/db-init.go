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

	adapterrepo "github.com/eslsoft/cliploop/internal/adapter/repository"
	"github.com/eslsoft/cliploop/internal/infrastructure/config"
	"github.com/eslsoft/cliploop/internal/infrastructure/database"
)

// dbInitCmd creates the storage schema for the configured database. serve
// does this on startup too; the command exists for provisioning pipelines
// that prepare the database before the service user gets DDL-free
// credentials. Note: go-sqlite3 requires a CGO_ENABLED=1 build.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create or upgrade the storage schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, cleanup, err := database.Open(cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer cleanup()

		if err := adapterrepo.EnsureSchema(cmd.Context(), db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		cmd.Printf("schema ready (%s)\n", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
}
