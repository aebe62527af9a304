// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the donelist CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donelist",
		Short: "Donelist - a small task tracker",
		Long: `Donelist is a small task-tracking server with typed use-case
outcomes and pluggable browser/API authentication.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
