// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/logging"
)

// options are the persistent flags shared by every command.
type options struct {
	dim      int
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "storefrontctl",
		Short:        "Storefront recommendation engine operator tool",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Init(logging.Config{
				Level:     opts.logLevel,
				Format:    "console",
				Service:   "storefrontctl",
				Timestamp: true,
				Output:    cmd.ErrOrStderr(),
			})
		},
	}
	root.PersistentFlags().IntVar(&opts.dim, "dim", 0, "vector dimension (default from config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newVectorizeCmd(opts),
		newSimilarityCmd(opts),
		newReindexCmd(opts),
		newSimilarCmd(opts),
	)
	return root
}

// loadConfig reads the layered configuration and applies flag overrides.
func loadConfig(opts *options, dbPath string) (*config.Config, error) {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.dim > 0 {
		cfg.Vector.Dimension = opts.dim
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg, nil
}

// dimension returns the --dim flag, falling back to the configured value.
func dimension(opts *options) (int, error) {
	if opts.dim > 0 {
		return opts.dim, nil
	}
	cfg, err := loadConfig(opts, "")
	if err != nil {
		return 0, err
	}
	return cfg.Vector.Dimension, nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
