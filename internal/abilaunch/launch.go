package abilaunch

import (
	"context"
	"fmt"

	"github.com/sanity-io/litter"

	"github.com/armadaproject/abilaunch/internal/calculation"
	"github.com/armadaproject/abilaunch/internal/launcher"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

// JobFile describes a single calculation, in YAML or JSON.
//
//	workDir: ~/calculations/h2
//	pseudos: [~/pseudos/01h.pspgth]
//	inputName: h2.in
//	run: true
//	parameters:
//	  ecut: 10.0
//	  ...
type JobFile struct {
	launcher.JobSpec
	// FilesFile names an ABINIT files file. Its input name and pseudopotentials are used
	// when the job does not set them.
	FilesFile string `json:"filesFile,omitempty"`
	// InputFile names an existing input file to take variables from. Parameters are applied on top.
	InputFile string `json:"inputFile,omitempty"`
}

func (f JobFile) spec() (launcher.JobSpec, error) {
	spec := f.JobSpec
	if f.FilesFile != "" {
		files, err := calculation.ReadFiles(f.FilesFile)
		if err != nil {
			return spec, err
		}
		if spec.InputName == "" {
			spec.InputName = files.Input
		}
		if len(spec.Pseudos) == 0 {
			spec.Pseudos = files.Pseudos
		}
	}
	if f.InputFile != "" {
		params, err := calculation.ReadInput(f.InputFile)
		if err != nil {
			return spec, err
		}
		spec.Parameters = parameters.Merge(params, spec.Parameters)
	}
	return spec, nil
}

// Launch stages, and possibly runs, the calculation described in the job file at path.
func (a *App) Launch(ctx context.Context, path string) error {
	var jobFile JobFile
	if err := readYAML(path, &jobFile); err != nil {
		return err
	}
	spec, err := jobFile.spec()
	if err != nil {
		return err
	}
	config, err := a.config()
	if err != nil {
		return err
	}

	a.logger().Debugf("job read from %s: %s", path, litter.Sdump(spec))
	m := a.newMetrics()
	defer a.writeMetrics(m)
	result, err := a.jobDirector(config, m).Launch(ctx, spec)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s: %s\n", result.CalcPath(), describe(result))
	return nil
}

func describe(result *launcher.Result) string {
	switch {
	case result.State == launcher.Failed:
		return fmt.Sprintf("failed after reaching %s", result.FailedIn)
	case result.Submitted:
		return "submitted"
	case result.Duration > 0:
		return fmt.Sprintf("finished in %s", result.Duration)
	default:
		return "files written"
	}
}
