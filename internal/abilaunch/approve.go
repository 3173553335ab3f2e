package abilaunch

import (
	"strings"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/abilaunch/internal/approver"
	"github.com/armadaproject/abilaunch/internal/calculation"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

// ApproveParams describes the parallel layout to check the parameters against.
// Zero values leave the corresponding setting unset.
type ApproveParams struct {
	Nodes        string
	ProcsPerNode int
	MPIProcesses int
}

func (p ApproveParams) descriptor() *approver.ParallelDescriptor {
	return approver.NewParallelDescriptor(p.Nodes, positive(p.ProcsPerNode), positive(p.MPIProcesses))
}

func positive(i int) *int {
	if i <= 0 {
		return nil
	}
	return &i
}

// Approve checks the parameters in path, either an ABINIT input file (.in) or a YAML/JSON mapping,
// and prints the result. Invalid parameters are returned as an error.
func (a *App) Approve(path string) error {
	var params parameters.Set
	if strings.HasSuffix(path, ".in") {
		read, err := calculation.ReadInput(path)
		if err != nil {
			return err
		}
		params = read
	} else if err := readYAML(path, &params); err != nil {
		return err
	}

	result := approver.New(a.logger()).Approve(params, a.Params.Approve.descriptor())
	out, err := yaml.Marshal(result)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := a.Out.Write(out); err != nil {
		return errors.WithStack(err)
	}
	if !result.Valid {
		return errors.WithStack(result.Err())
	}
	return nil
}
