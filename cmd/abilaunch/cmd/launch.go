package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/abilaunch/internal/abilaunch"
)

func launchCmdWithApp(a *abilaunch.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch ./path/to/job.yaml",
		Short: "Stage a single calculation and optionally run it",
		Long: `Stage a single calculation from a job file and optionally run or submit it.

Example job.yaml:

workDir: ~/calculations/h2
pseudos: [01h.pspgth]
inputName: h2.in
run: true
jobOptions:
  walltime: "1:00:00"
parameters:
  acell: [10, 10, 10]
  ntypat: 1
  znucl: 1
  natom: 2
  typat: [1, 1]
  ecut: 10.0
  toldfe: 1.0e-6

Instead of pseudos and inputName, filesFile may name an ABINIT files file; inputFile may name
an existing input to take variables from.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()
			return a.Launch(ctx, args[0])
		},
	}
	return cmd
}
