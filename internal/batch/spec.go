package batch

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
	"github.com/armadaproject/abilaunch/internal/launcher"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

// Spec describes a batch of calculations sharing a base set of parameters. Job i gets the base
// parameters overlaid with ParameterOverlays[i] and runs in WorkDir/<InputNames[i] without .in>.
type Spec struct {
	WorkDir           string           `json:"workDir"`
	CommonPseudos     StringList       `json:"commonPseudos"`
	InputNames        []string         `json:"inputNames"`
	BaseParameters    parameters.Set   `json:"baseParameters"`
	ParameterOverlays []parameters.Set `json:"parameterOverlays"`
	// SpecificPseudos, if given, has one list of extra pseudopotentials per job.
	SpecificPseudos []StringList `json:"specificPseudos,omitempty"`

	LinkFiles  PerJob[StringList]             `json:"linkFiles,omitempty"`
	JobNames   PerJob[string]                 `json:"jobNames,omitempty"`
	Overwrite  PerJob[bool]                   `json:"overwrite,omitempty"`
	Run        PerJob[bool]                   `json:"run,omitempty"`
	Submit     PerJob[bool]                   `json:"submit,omitempty"`
	Executable PerJob[string]                 `json:"executable,omitempty"`
	JobOptions map[string]PerJob[interface{}] `json:"jobOptions,omitempty"`

	// Parallelism is the number of jobs staged at the same time. Zero or one runs them in order.
	Parallelism int `json:"parallelism,omitempty"`
}

// Jobs expands the batch into one launcher.JobSpec per input name. Every per-job field is checked
// before anything is returned, so a malformed batch yields no jobs at all.
func (s Spec) Jobs() ([]launcher.JobSpec, error) {
	n := len(s.InputNames)
	if n == 0 {
		return nil, errors.WithStack(&launcherrors.ErrInvalidArgument{
			Name:    "inputNames",
			Value:   s.InputNames,
			Message: "a batch needs at least one job",
		})
	}
	if len(s.ParameterOverlays) != n {
		return nil, mismatch("parameterOverlays", len(s.ParameterOverlays), n)
	}
	if s.SpecificPseudos != nil && len(s.SpecificPseudos) != n {
		return nil, mismatch("specificPseudos", len(s.SpecificPseudos), n)
	}
	for i, name := range s.InputNames {
		if name == "" || launcher.CalculationName(name, "") == "" {
			return nil, errors.WithStack(&launcherrors.ErrInvalidArgument{
				Name:    "inputNames",
				Value:   name,
				Message: fmt.Sprintf("job %d has no name", i),
			})
		}
	}

	linkFiles, err := s.LinkFiles.Expand("linkFiles", n)
	if err != nil {
		return nil, err
	}
	jobNames, err := s.JobNames.Expand("jobNames", n)
	if err != nil {
		return nil, err
	}
	overwrite, err := s.Overwrite.Expand("overwrite", n)
	if err != nil {
		return nil, err
	}
	run, err := s.Run.Expand("run", n)
	if err != nil {
		return nil, err
	}
	submit, err := s.Submit.Expand("submit", n)
	if err != nil {
		return nil, err
	}
	executable, err := s.Executable.Expand("executable", n)
	if err != nil {
		return nil, err
	}
	options := make(map[string][]interface{}, len(s.JobOptions))
	for name, option := range s.JobOptions {
		if !option.IsSet() {
			continue
		}
		values, err := option.Expand("jobOptions."+name, n)
		if err != nil {
			return nil, err
		}
		options[name] = values
	}

	jobs := make([]launcher.JobSpec, n)
	for i, inputName := range s.InputNames {
		pseudos := append([]string{}, s.CommonPseudos...)
		if s.SpecificPseudos != nil {
			pseudos = append(pseudos, s.SpecificPseudos[i]...)
		}
		jobOptions := make(map[string]interface{}, len(options)+1)
		for name, values := range options {
			jobOptions[name] = values[i]
		}
		if s.JobNames.IsSet() {
			jobOptions[launcher.JobNameOption] = jobNames[i]
		}
		var submitOverride *bool
		if s.Submit.IsSet() {
			submitOverride = &submit[i]
		}

		jobs[i] = launcher.JobSpec{
			WorkDir:    filepath.Join(s.WorkDir, launcher.CalculationName(inputName, "")),
			Pseudos:    pseudos,
			InputName:  inputName,
			Overwrite:  overwrite[i],
			Parameters: parameters.Merge(s.BaseParameters, s.ParameterOverlays[i]),
			Executable: executable[i],
			LinkFiles:  linkFiles[i],
			JobOptions: jobOptions,
			Run:        run[i],
			Submit:     submitOverride,
		}
	}
	return jobs, nil
}

func mismatch(field string, got int, want int) error {
	return errors.WithStack(&launcherrors.ErrCardinalityMismatch{Field: field, Got: got, Want: want})
}
