package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/abilaunch/internal/abilaunch"
)

func batchCmdWithApp(a *abilaunch.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch ./path/to/batch.yaml",
		Short: "Stage one calculation per parameter variation",
		Long: `Stage one calculation per entry of inputNames, each in its own sub-directory of workDir.

Settings may be given once for all jobs or as a list with one entry per job.

Example batch.yaml:

workDir: ~/calculations/ecut
commonPseudos: 01h.pspgth
inputNames: [ecut5.in, ecut10.in]
baseParameters:
  acell: [10, 10, 10]
  ntypat: 1
  znucl: 1
  typat: [1, 1]
  toldfe: 1.0e-6
parameterOverlays:
  - ecut: 5
  - ecut: 10
jobNames: [h2_ecut5, h2_ecut10]
jobOptions:
  ppn: 4`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initParams(cmd, a.Params); err != nil {
				return err
			}
			parallelism, err := cmd.Flags().GetInt("parallelism")
			if err != nil {
				return err
			}
			a.Params.Batch.Parallelism = parallelism
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()
			return a.Batch(ctx, args[0])
		},
	}
	cmd.Flags().Int("parallelism", 0, "Number of jobs staged at the same time; overrides the batch file.")
	return cmd
}
