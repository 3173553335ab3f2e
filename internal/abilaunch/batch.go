package abilaunch

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/armadaproject/abilaunch/internal/batch"
)

type BatchParams struct {
	// Overrides the parallelism of the batch file if positive.
	Parallelism int
}

// Batch stages every calculation of the batch file at path and prints one line per job.
func (a *App) Batch(ctx context.Context, path string) error {
	var spec batch.Spec
	if err := readYAML(path, &spec); err != nil {
		return err
	}
	if a.Params.Batch.Parallelism > 0 {
		spec.Parallelism = a.Params.Batch.Parallelism
	}
	config, err := a.config()
	if err != nil {
		return err
	}

	m := a.newMetrics()
	defer a.writeMetrics(m)
	director := batch.NewDirector(a.jobDirector(config, m), batch.WithLogger(a.logger()), batch.WithMetrics(m))
	report, err := director.Launch(ctx, spec)
	if report == nil {
		return err
	}

	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', 0)
	fmt.Fprintf(w, "Batch:\t%s\n", report.BatchId)
	for _, job := range report.Jobs {
		status := "ok"
		if job.Err != nil {
			status = job.Err.Error()
		} else if job.Result != nil {
			status = describe(job.Result)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", job.Index, job.WorkDir, status)
	}
	fmt.Fprintf(w, "Succeeded:\t%d\n", len(report.Succeeded()))
	fmt.Fprintf(w, "Failed:\t%d\n", len(report.Failed()))
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		return flushErr
	}
	return err
}
