package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/abilaunch/internal/abilaunch"
)

func approveCmdWithApp(a *abilaunch.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve ./path/to/parameters.yaml",
		Short: "Check input variables for problems that make ABINIT fail",
		Long: `Check input variables for problems that make ABINIT fail outright.

The file is either an ABINIT input file ending in .in or a YAML/JSON mapping of variables.
The parallel layout to check against is given with flags.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initParams(cmd, a.Params); err != nil {
				return err
			}
			flags := cmd.Flags()
			var err error
			if a.Params.Approve.Nodes, err = flags.GetString("nodes"); err != nil {
				return err
			}
			if a.Params.Approve.ProcsPerNode, err = flags.GetInt("ppn"); err != nil {
				return err
			}
			if a.Params.Approve.MPIProcesses, err = flags.GetInt("mpirun-np"); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Approve(args[0])
		},
	}
	cmd.Flags().String("nodes", "", `Number of nodes, optionally with a tag, e.g. "3" or "3:m48G".`)
	cmd.Flags().Int("ppn", 0, "Processors per node.")
	cmd.Flags().Int("mpirun-np", 0, "Number of MPI processes.")
	return cmd
}
