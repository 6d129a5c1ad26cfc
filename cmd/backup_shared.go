package cmd

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func defaultExportFilename(gzipEnabled bool) string {
	name := fmt.Sprintf("cliploop-%s.ndjson", time.Now().Format("20060102-150405"))
	if gzipEnabled {
		name += ".gz"
	}
	return name
}

func wantsGzip(path string, flagEnabled bool) bool {
	if flagEnabled {
		return true
	}
	return path != "-" && strings.HasSuffix(strings.ToLower(path), ".gz")
}

// openBackupWriter resolves "-" to stdout and layers gzip when requested.
// The returned closers must run in order.
func openBackupWriter(cmd *cobra.Command, path string, gzipEnabled bool) (io.Writer, []func() error, error) {
	var (
		writer   = cmd.OutOrStdout()
		closeFns []func() error
	)
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create backup file: %w", err)
		}
		writer = file
		closeFns = append(closeFns, file.Close)
	}
	if gzipEnabled {
		gz := gzip.NewWriter(writer)
		writer = gz
		closeFns = append([]func() error{gz.Close}, closeFns...)
	}
	return writer, closeFns, nil
}

func openBackupReader(cmd *cobra.Command, path string, gzipEnabled bool) (io.Reader, []func() error, error) {
	var (
		reader   io.Reader = cmd.InOrStdin()
		closeFns []func() error
	)
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open backup file: %w", err)
		}
		reader = file
		closeFns = append(closeFns, file.Close)
	}
	if gzipEnabled {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			for _, closer := range closeFns {
				_ = closer()
			}
			return nil, nil, fmt.Errorf("open gzip stream: %w", err)
		}
		reader = gz
		closeFns = append([]func() error{gz.Close}, closeFns...)
	}
	return reader, closeFns, nil
}
