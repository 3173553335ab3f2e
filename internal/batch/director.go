package batch

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/armadaproject/abilaunch/internal/common/logging"
	"github.com/armadaproject/abilaunch/internal/launcher"
	"github.com/armadaproject/abilaunch/internal/metrics"
)

// JobLauncher stages a single calculation. *launcher.Director implements it.
type JobLauncher interface {
	Launch(ctx context.Context, spec launcher.JobSpec) (*launcher.Result, error)
}

type Director struct {
	jobs    JobLauncher
	logger  *logrus.Entry
	metrics *metrics.Metrics
}

type Option func(*Director)

func WithLogger(logger *logrus.Entry) Option {
	return func(d *Director) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Director) { d.metrics = m }
}

func NewDirector(jobs JobLauncher, opts ...Option) *Director {
	d := &Director{jobs: jobs}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.OrStandard(d.logger)
	return d
}

// Launch stages every job of the batch. A malformed spec is rejected before any directory is created.
// Otherwise every job is attempted even if earlier ones fail; the report has one entry per job, in
// input order, and the returned error collects the failures.
func (d *Director) Launch(ctx context.Context, spec Spec) (*Report, error) {
	workDir, err := launcher.AbsPath(spec.WorkDir)
	if err != nil {
		return nil, err
	}
	spec.WorkDir = workDir
	jobs, err := spec.Jobs()
	if err != nil {
		return nil, err
	}

	report := &Report{
		BatchId: uuid.NewString(),
		WorkDir: workDir,
		Jobs:    make([]JobReport, len(jobs)),
	}
	logger := d.logger.WithField(logging.BatchIdField, report.BatchId)
	logger.Infof("launching %d calculations in %s", len(jobs), workDir)
	d.metrics.RecordBatch(len(jobs))

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "error creating batch directory %s", workDir)
	}

	if spec.Parallelism <= 1 {
		for i, job := range jobs {
			report.Jobs[i] = d.launchJob(ctx, logger, i, spec.InputNames[i], job)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(spec.Parallelism)
		for i, job := range jobs {
			i, job := i, job
			g.Go(func() error {
				report.Jobs[i] = d.launchJob(ctx, logger, i, spec.InputNames[i], job)
				return nil
			})
		}
		_ = g.Wait()
	}

	var result *multierror.Error
	for _, job := range report.Jobs {
		if job.Err != nil {
			result = multierror.Append(result, errors.Wrapf(job.Err, "job %d (%s)", job.Index, job.InputName))
		}
	}
	logger.Infof("batch finished: %d succeeded, %d failed", len(report.Succeeded()), len(report.Failed()))
	return report, result.ErrorOrNil()
}

func (d *Director) launchJob(ctx context.Context, logger *logrus.Entry, i int, inputName string, job launcher.JobSpec) JobReport {
	logger = logger.WithField(logging.JobIndexField, i)
	jobReport := JobReport{Index: i, InputName: inputName, WorkDir: job.WorkDir}

	if err := os.MkdirAll(job.WorkDir, 0o755); err != nil {
		jobReport.Err = errors.Wrapf(err, "error creating %s", job.WorkDir)
		logging.WithStacktrace(logger, jobReport.Err).Error("could not create job directory")
		return jobReport
	}
	result, err := d.jobs.Launch(ctx, job)
	jobReport.Result = result
	jobReport.Err = err
	if err != nil {
		logger.Warnf("calculation %s failed", inputName)
	} else {
		logger.Debugf("calculation %s done", inputName)
	}
	return jobReport
}
