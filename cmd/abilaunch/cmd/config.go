package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/abilaunch/internal/abilaunch"
)

func configCmdWithApp(a *abilaunch.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the launcher configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a default configuration file if there is none",
			Args:  cobra.NoArgs,
			PreRunE: func(cmd *cobra.Command, args []string) error {
				return initParams(cmd, a.Params)
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ConfigInit()
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			PreRunE: func(cmd *cobra.Command, args []string) error {
				return initParams(cmd, a.Params)
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ConfigShow()
			},
		},
	)
	return cmd
}
