package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/flemzord/notekeeper/internal/config"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file",
		Long: "Walk through the main settings and write a configuration file. " +
			"With --yes the defaults are written without prompting.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("path")
			force, _ := cmd.Flags().GetBool("force")
			yes, _ := cmd.Flags().GetBool("yes")
			if path == "" {
				path = config.UserConfigPath()
			}

			cfg := config.Default()
			if !yes {
				if err := runWizard(cfg); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing written.")
						return nil
					}
					return err
				}
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if err := config.Write(path, cfg, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().String("path", "", "Where to write the file (default: user config path)")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.Flags().BoolP("yes", "y", false, "Write defaults without prompting")
	return cmd
}

// runWizard edits cfg in place through an interactive form.
func runWizard(cfg *config.Config) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Home root").
				Description("Every note lives below this directory. Leave empty for your home directory.").
				Value(&cfg.HomeRoot),
			huh.NewInput().
				Title("Default notes folder").
				Description("Relative to the home root, used when no directory is given.").
				Value(&cfg.DefaultSubpath),
			huh.NewSelect[string]().
				Title("Transport").
				Options(
					huh.NewOption("stdio (spawned by an MCP host)", config.TransportStdio),
					huh.NewOption("http (long-running gateway)", config.TransportHTTP),
				).
				Value(&cfg.Transport),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("HTTP bind address").
				Value(&cfg.HTTP.Bind),
			huh.NewInput().
				Title("Bearer token").
				Description("Required on the MCP endpoint. Leave empty to disable authentication.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.HTTP.BearerToken),
		).WithHideFunc(func() bool { return cfg.Transport != config.TransportHTTP }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Read-only mode?").
				Description("Only expose the tools that read files.").
				Value(&cfg.Tools.ReadOnly),
		),
	).Run()
}
