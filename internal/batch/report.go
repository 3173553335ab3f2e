package batch

import (
	"github.com/armadaproject/abilaunch/internal/launcher"
)

type Report struct {
	BatchId string
	WorkDir string
	Jobs    []JobReport
}

type JobReport struct {
	Index     int
	InputName string
	WorkDir   string
	// Result is nil if the job failed before reaching the launcher.
	Result *launcher.Result
	Err    error
}

// Succeeded returns the indices of the jobs that completed without error.
func (r *Report) Succeeded() []int {
	var indices []int
	for _, job := range r.Jobs {
		if job.Err == nil {
			indices = append(indices, job.Index)
		}
	}
	return indices
}

// Failed returns the indices of the jobs that failed.
func (r *Report) Failed() []int {
	var indices []int
	for _, job := range r.Jobs {
		if job.Err != nil {
			indices = append(indices, job.Index)
		}
	}
	return indices
}
