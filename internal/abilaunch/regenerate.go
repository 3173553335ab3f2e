package abilaunch

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/armadaproject/abilaunch/internal/calculation"
	"github.com/armadaproject/abilaunch/internal/launcher"
)

type RegenerateParams struct {
	// Pseudopotentials to use. If empty they are read from the files file next to the input.
	Pseudos   []string
	Overwrite bool
	Run       bool
}

// Regenerate rewrites the files of the calculation whose input file is at inputPath,
// keeping the input file itself unchanged.
func (a *App) Regenerate(ctx context.Context, inputPath string) error {
	p := a.Params.Regenerate
	spec := launcher.JobSpec{Pseudos: p.Pseudos, Overwrite: p.Overwrite, Run: p.Run}
	if len(spec.Pseudos) == 0 {
		filesPath := strings.TrimSuffix(inputPath, ".in") + ".files"
		files, err := calculation.ReadFiles(filesPath)
		if err != nil {
			return errors.WithMessagef(err, "no pseudopotentials given and none could be read from %s", filesPath)
		}
		spec.Pseudos = files.Pseudos
	}
	config, err := a.config()
	if err != nil {
		return err
	}

	m := a.newMetrics()
	defer a.writeMetrics(m)
	result, err := a.jobDirector(config, m).Regenerate(ctx, inputPath, spec, calculation.ReadInput)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s: %s\n", result.CalcPath(), describe(result))
	return nil
}
