package approver

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// DecompositionVariables split the work of a parallel run between processes. None of them may exceed the
// total number of MPI processes.
var DecompositionVariables = []string{"npkpt", "npband", "npfft", "npspinor", "nphf"}

// ParallelDescriptor describes the resources requested for a parallel run.
type ParallelDescriptor struct {
	// Number of nodes, either "<n>" or "<n>:<tag>" as accepted by PBS (e.g. "3:m48G"). Empty means one node.
	Nodes string
	// Processors available on each node. Nil skips the overcommit check.
	ProcsPerNode *int
	// Number of MPI processes per node. Nil means the run is not parallel.
	MPIProcesses *int
}

// NewParallelDescriptor returns nil if none of the fields were supplied, which disables the parallel check.
func NewParallelDescriptor(nodes string, procsPerNode *int, mpiProcesses *int) *ParallelDescriptor {
	if nodes == "" && procsPerNode == nil && mpiProcesses == nil {
		return nil
	}
	return &ParallelDescriptor{Nodes: nodes, ProcsPerNode: procsPerNode, MPIProcesses: mpiProcesses}
}

// NodeCount returns the leading integer of Nodes.
func (p ParallelDescriptor) NodeCount() (int, error) {
	nodes := strings.TrimSpace(p.Nodes)
	if nodes == "" {
		return 1, nil
	}
	if i := strings.Index(nodes, ":"); i >= 0 {
		nodes = nodes[:i]
	}
	n, err := strconv.Atoi(nodes)
	if err != nil || n < 1 {
		return 0, errors.Errorf("invalid node count %q", p.Nodes)
	}
	return n, nil
}

type parallelValidator struct{}

func (v parallelValidator) Validate(r request) error {
	p := r.parallel
	if p == nil || p.MPIProcesses == nil {
		return nil
	}
	mpiProcesses := *p.MPIProcesses
	if p.ProcsPerNode != nil && mpiProcesses > *p.ProcsPerNode {
		return errors.Errorf("npernode %d call uses more proc than available on the nodes (%d)!", mpiProcesses, *p.ProcsPerNode)
	}
	nodes, err := p.NodeCount()
	if err != nil {
		return err
	}
	totalCpus := nodes * mpiProcesses

	var result *multierror.Error
	for _, name := range DecompositionVariables {
		value, err := r.params.Int(name, 1)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if value > totalCpus {
			result = multierror.Append(result, errors.Errorf("%s is greater than the total number of cpus (%d)!", name, totalCpus))
		}
	}
	return result.ErrorOrNil()
}
