package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/abilaunch/internal/abilaunch"
)

func regenerateCmdWithApp(a *abilaunch.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate ./path/to/calc.in",
		Short: "Rewrite the files of a calculation around an existing input file",
		Long: `Rewrite the files file, job file and links of a calculation around an existing input file.

The input file is kept exactly as it is. Pseudopotentials are taken from --pseudos or, if not given,
from the files file next to the input.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initParams(cmd, a.Params); err != nil {
				return err
			}
			flags := cmd.Flags()
			var err error
			if a.Params.Regenerate.Pseudos, err = flags.GetStringSlice("pseudos"); err != nil {
				return err
			}
			if a.Params.Regenerate.Overwrite, err = flags.GetBool("overwrite"); err != nil {
				return err
			}
			if a.Params.Regenerate.Run, err = flags.GetBool("run"); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()
			return a.Regenerate(ctx, args[0])
		},
	}
	cmd.Flags().StringSlice("pseudos", nil, "Pseudopotentials to use, comma separated.")
	cmd.Flags().Bool("overwrite", true, "Replace existing files of the calculation.")
	cmd.Flags().Bool("run", false, "Run or submit the calculation once its files are written.")
	return cmd
}
