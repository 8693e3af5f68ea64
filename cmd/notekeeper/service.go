package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flemzord/notekeeper/internal/config"
	"github.com/flemzord/notekeeper/internal/daemon"
	"github.com/flemzord/notekeeper/pkg/app"
)

func serviceCmd() *cobra.Command {
	actions := append(slices.Clone(daemon.Actions()), "status")
	cmd := &cobra.Command{
		Use:       "service <" + strings.Join(actions, "|") + ">",
		Short:     "Manage the HTTP gateway as a system service",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: actions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			user, _ := cmd.Flags().GetBool("user")
			if cfgPath != "" {
				abs, err := filepath.Abs(cfgPath)
				if err != nil {
					return err
				}
				cfgPath = abs
			}

			params := app.RunParams{
				ConfigPath: cfgPath,
				Transport:  config.TransportHTTP,
				Version:    version,
				Commit:     commit,
				Date:       date,
			}
			s, err := daemon.New(daemon.Config{ConfigPath: cfgPath, UserService: user}, func(ctx context.Context) error {
				return app.Run(ctx, params)
			}, nil)
			if err != nil {
				return err
			}

			action := args[0]
			if action == "status" {
				status, err := daemon.Status(s)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", daemon.Name, status)
				return nil
			}
			if err := daemon.Control(s, action); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s done\n", daemon.Name, action)
			return nil
		},
	}
	cmd.Flags().Bool("user", false, "Install as a per-user service")
	return cmd
}
