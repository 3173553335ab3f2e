package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/armadaproject/abilaunch/internal/abilaunch"
	"github.com/armadaproject/abilaunch/internal/common"
)

const (
	configFlag      = "config"
	verboseFlag     = "verbose"
	metricsFileFlag = "metrics-file"
	tempDirFlag     = "temp-dir"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	return rootCmdWithApp(abilaunch.New())
}

func rootCmdWithApp(a *abilaunch.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abilaunch",
		Short: "abilaunch stages, checks and launches ABINIT calculations.",
		Long: `abilaunch stages, checks and launches ABINIT calculations.

The launcher configuration is an INI file, by default $HOME/.config/abilaunch:

[DEFAULT]
abinit_path = /opt/abinit/bin/abinit
default_pseudos_dir = ~/pseudos
qsub = false

Run "abilaunch config init" to create one.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String(configFlag, "", "Launcher configuration file (default $HOME/.config/abilaunch).")
	cmd.PersistentFlags().BoolP(verboseFlag, "v", false, "Log debug output.")
	cmd.PersistentFlags().String(metricsFileFlag, "", "Write Prometheus metrics to this file when done.")
	cmd.PersistentFlags().String(tempDirFlag, "", "Directory used to stage input files during regeneration.")

	cmd.AddCommand(
		launchCmdWithApp(a),
		batchCmdWithApp(a),
		approveCmdWithApp(a),
		regenerateCmdWithApp(a),
		configCmdWithApp(a),
		versionCmdWithApp(a),
	)
	return cmd
}

func initParams(cmd *cobra.Command, params *abilaunch.Params) error {
	return readGlobalFlags(cmd.Flags(), params)
}

// readGlobalFlags copies the flags shared by every command into params.
func readGlobalFlags(flags *pflag.FlagSet, params *abilaunch.Params) error {
	var err error
	if params.ConfigPath, err = flags.GetString(configFlag); err != nil {
		return err
	}
	if params.MetricsFile, err = flags.GetString(metricsFileFlag); err != nil {
		return err
	}
	if params.TempDir, err = flags.GetString(tempDirFlag); err != nil {
		return err
	}
	verbose, err := flags.GetBool(verboseFlag)
	if err != nil {
		return err
	}
	if verbose {
		return common.SetLogLevel("debug")
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, so a running calculation is killed on ctrl-C.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
