// Package main is the entry point for the notekeeper CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flemzord/notekeeper/internal/config"
	"github.com/flemzord/notekeeper/internal/daemon"
	"github.com/flemzord/notekeeper/internal/notes"
	"github.com/flemzord/notekeeper/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notekeeper",
		Short:         "Sandboxed local notes for MCP hosts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.AddCommand(
		versionCmd(),
		serveCmd(),
		resolveCmd(),
		configCmd(),
		initCmd(),
		journalCmd(),
		serviceCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notekeeper %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the note tools over stdio or HTTP",
		Long: "Serve the note tools to an MCP host. With the stdio transport the host " +
			"spawns notekeeper and talks over stdin/stdout; with the http transport " +
			"notekeeper runs a long-lived gateway.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			transport, _ := cmd.Flags().GetString("transport")

			params := app.RunParams{
				ConfigPath: cfgPath,
				Transport:  transport,
				Version:    version,
				Commit:     commit,
				Date:       date,
			}

			// Started by a service manager: hand over the lifecycle.
			if transport == config.TransportHTTP && !daemon.Interactive() {
				return daemon.Run(daemon.Config{ConfigPath: cfgPath}, func(ctx context.Context) error {
					return app.Run(ctx, params)
				}, nil)
			}
			return app.Run(cmd.Context(), params)
		},
	}
	cmd.Flags().StringP("transport", "t", "", "Transport to serve (stdio|http); overrides the config file")
	return cmd
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [directory]",
		Short: "Print where a file would be stored",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			filename, _ := cmd.Flags().GetString("filename")

			cfg, _, err := app.LoadConfig(cfgPath, "")
			if err != nil {
				return err
			}
			var directory string
			if len(args) == 1 {
				directory = args[0]
			}

			res, err := app.ResolvePath(cmd.Context(), cfg, filename, directory)
			if err != nil {
				return err
			}
			if !res.OK() {
				return errors.New(res.Text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	cmd.Flags().StringP("filename", "f", notes.DefaultPathFile, "File name to resolve")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			resolver, err := app.NewResolver(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration OK")
			fmt.Fprintf(out, "  home root:   %s\n", resolver.HomeRoot())
			fmt.Fprintf(out, "  default dir: %s\n", resolver.DefaultDir())
			fmt.Fprintf(out, "  transport:   %s\n", cfg.Transport)
			if cfg.Journal.IsEnabled() {
				fmt.Fprintf(out, "  journal:     %s\n", app.JournalPath(cfg.Journal))
			} else {
				fmt.Fprintln(out, "  journal:     disabled")
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file search order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			found, ok := config.ResolvePath()
			for _, c := range config.Candidates() {
				marker := " "
				if ok && c == found {
					marker = "*"
				}
				abs, err := filepath.Abs(c)
				if err != nil {
					abs = c
				}
				fmt.Fprintf(out, "%s %s\n", marker, abs)
			}
		},
	})
	return cmd
}
