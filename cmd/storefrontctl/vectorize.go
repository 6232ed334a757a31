// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/storefront/internal/vector"
)

func newVectorizeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Print the vector of a text or an image file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "text [text]",
		Short: "Print the folded text vector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := dimension(opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), vector.TextVector(args[0], dim))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "image [file]",
		Short: "Print the pseudo image vector of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			dim, err := dimension(opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), vector.PseudoImageVector(data, dim))
		},
	})
	return cmd
}

func newSimilarityCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "similarity [text-a] [text-b]",
		Short: "Print the cosine similarity of two texts' vectors",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := dimension(opts)
			if err != nil {
				return err
			}
			a := vector.TextVector(args[0], dim)
			b := vector.TextVector(args[1], dim)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", vector.CosineSimilarity(a, b))
			return err
		},
	}
}
