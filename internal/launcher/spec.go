package launcher

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/armadaproject/abilaunch/internal/approver"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

const inputSuffix = ".in"

// JobSpec describes one calculation to stage and possibly run.
type JobSpec struct {
	WorkDir    string                 `json:"workDir"`
	Pseudos    []string               `json:"pseudos"`
	InputName  string                 `json:"inputName,omitempty"`
	Overwrite  bool                   `json:"overwrite,omitempty"`
	Parameters parameters.Set         `json:"parameters"`
	Executable string                 `json:"executable,omitempty"`
	LinkFiles  []string               `json:"linkFiles,omitempty"`
	JobOptions map[string]interface{} `json:"jobOptions,omitempty"`
	Run        bool                   `json:"run,omitempty"`
	// Submit overrides the configured choice between submitting to the queue and running right away.
	Submit *bool `json:"submit,omitempty"`
}

// CalculationName is the base name used for all files of a calculation: the input name without a
// trailing ".in", or the name of the working directory if no input name is given.
func CalculationName(inputName string, workDir string) string {
	if inputName == "" {
		return filepath.Base(workDir)
	}
	return strings.TrimSuffix(inputName, inputSuffix)
}

type Result struct {
	WorkDir     string
	Calculation string
	State       State
	// FailedIn is the last state reached before a failure. Only meaningful if State is Failed.
	FailedIn  State
	History   []State
	Approval  approver.Result
	Submitted bool
	// Duration of a synchronous run. Zero for submitted or unexecuted calculations.
	Duration time.Duration
}

// CalcPath is the working directory joined with the calculation name.
func (r *Result) CalcPath() string {
	return filepath.Join(r.WorkDir, r.Calculation)
}

func (r *Result) advance(s State) {
	r.State = s
	r.History = append(r.History, s)
}

func (r *Result) fail() {
	r.FailedIn = r.State
	r.advance(Failed)
}
