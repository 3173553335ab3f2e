package launcher

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/armadaproject/abilaunch/internal/approver"
	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
	"github.com/armadaproject/abilaunch/internal/common/logging"
	"github.com/armadaproject/abilaunch/internal/common/util"
	"github.com/armadaproject/abilaunch/internal/configuration"
	"github.com/armadaproject/abilaunch/internal/metrics"
	"github.com/armadaproject/abilaunch/internal/pseudos"
)

const (
	stderrFileName = "stderr"
	logSuffix      = ".log"
)

// PathResolver turns the pseudopotential references of a job into one directory and the file names in it.
type PathResolver interface {
	ResolveSet(refs []string) (string, []string, error)
}

// Director takes a single calculation from a JobSpec to a populated working directory and,
// if asked to, runs or submits it.
type Director struct {
	config   configuration.LauncherConfig
	backends BackendFactory
	resolver PathResolver
	approver *approver.Approver
	clock    util.Clock
	logger   *logrus.Entry
	metrics  *metrics.Metrics
	tempDir  string
}

type Option func(*Director)

func WithClock(clock util.Clock) Option {
	return func(d *Director) { d.clock = clock }
}

func WithLogger(logger *logrus.Entry) Option {
	return func(d *Director) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Director) { d.metrics = m }
}

func WithResolver(resolver PathResolver) Option {
	return func(d *Director) { d.resolver = resolver }
}

// WithTempDir sets the directory under which regeneration stages input files. Defaults to os.TempDir().
func WithTempDir(dir string) Option {
	return func(d *Director) { d.tempDir = dir }
}

func NewDirector(config configuration.LauncherConfig, backends BackendFactory, opts ...Option) *Director {
	d := &Director{
		config:   config,
		backends: backends,
		resolver: pseudos.NewResolver(config.DefaultPseudosDir),
		clock:    &util.DefaultClock{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.OrStandard(d.logger)
	d.approver = approver.New(d.logger)
	return d
}

// Launch validates, stages and optionally runs one calculation.
// The returned result is never nil; on failure its State is Failed and FailedIn tells how far the job got.
func (d *Director) Launch(ctx context.Context, spec JobSpec) (*Result, error) {
	result, backend, err := d.materialize(spec)
	if err != nil {
		return result, err
	}
	return d.finish(ctx, spec, result, backend)
}

func (d *Director) materialize(spec JobSpec) (*Result, Backend, error) {
	result := &Result{}
	result.advance(Created)

	if spec.Parameters == nil {
		return d.failed(result, errors.WithStack(&launcherrors.ErrInvalidArgument{
			Name:    "parameters",
			Value:   nil,
			Message: "no abinit variables given",
		}))
	}

	parallel, err := parallelDescriptor(spec.JobOptions)
	if err != nil {
		return d.failed(result, err)
	}
	result.Approval = d.approver.Approve(spec.Parameters, parallel)
	if !result.Approval.Valid {
		d.metrics.RecordViolations(len(result.Approval.Errors))
		return d.failed(result, errors.WithStack(result.Approval.Err()))
	}
	result.advance(Validated)

	workDir, err := AbsPath(spec.WorkDir)
	if err != nil {
		return d.failed(result, err)
	}
	result.WorkDir = workDir
	result.Calculation = CalculationName(spec.InputName, workDir)
	logger := d.jobLogger(result)

	pseudoDir, pseudoNames, err := d.resolver.ResolveSet(spec.Pseudos)
	if err != nil {
		return d.failed(result, err)
	}
	linkFiles, err := existingFiles(spec.LinkFiles)
	if err != nil {
		return d.failed(result, err)
	}
	result.advance(Resolved)
	logger.Debugf("using pseudopotentials %v from %s", pseudoNames, pseudoDir)

	backend, err := d.backends(result.CalcPath())
	if err != nil {
		return d.failed(result, d.materializationError(result, err))
	}
	executable := spec.Executable
	if executable == "" {
		executable = d.config.ExecutablePath
	}
	backend.SetExecutable(executable)
	backend.SetPseudoDir(pseudoDir)
	backend.SetPseudos(pseudoNames)
	backend.SetStderr(filepath.Join(workDir, stderrFileName))
	backend.SetLog(filepath.Join(workDir, result.Calculation+logSuffix))
	if err := backend.SetParameters(spec.Parameters); err != nil {
		return d.failed(result, d.materializationError(result, err))
	}
	if err := ApplyJobOptions(backend.JobFile(), spec.JobOptions); err != nil {
		return d.failed(result, err)
	}
	if err := backend.Make(spec.Overwrite); err != nil {
		return d.failed(result, d.materializationError(result, err))
	}
	for _, path := range linkFiles {
		if err := backend.LinkResource(path); err != nil {
			return d.failed(result, d.materializationError(result, errors.Wrapf(err, "error linking %s", path)))
		}
	}
	result.advance(Materialized)
	logger.Infof("wrote calculation files for %s", result.Calculation)
	return result, backend, nil
}

// finish runs or submits a materialized calculation if the spec asks for it.
func (d *Director) finish(ctx context.Context, spec JobSpec, result *Result, backend Backend) (*Result, error) {
	if spec.Run {
		if err := d.execute(ctx, spec, result, backend); err != nil {
			result, _, err = d.failed(result, err)
			return result, err
		}
	}
	result.advance(Done)
	d.metrics.RecordJob(metrics.OutcomeDone, Done.String())
	return result, nil
}

func (d *Director) execute(ctx context.Context, spec JobSpec, result *Result, backend Backend) error {
	logger := d.jobLogger(result)
	submit := d.config.SubmitViaQueue
	if spec.Submit != nil {
		submit = *spec.Submit
	}

	if submit {
		if err := backend.Submit(ctx); err != nil {
			return errors.WithStack(&launcherrors.ErrExecution{Calculation: result.Calculation, Submitted: true, Cause: err})
		}
		result.Submitted = true
		result.advance(Submitted)
		logger.Infof("submitted calculation %s", result.Calculation)
		return nil
	}

	start := d.clock.Now()
	err := backend.Run(ctx)
	result.Duration = d.clock.Now().Sub(start)
	if err != nil {
		return errors.WithStack(&launcherrors.ErrExecution{Calculation: result.Calculation, Cause: err})
	}
	d.metrics.ObserveRun(result.Duration)
	result.advance(Executed)
	logger.WithField(logging.DurationField, result.Duration).Infof("calculation %s finished in %s", result.Calculation, result.Duration)
	return nil
}

func (d *Director) failed(result *Result, err error) (*Result, Backend, error) {
	reached := result.State
	result.fail()
	d.metrics.RecordJob(metrics.OutcomeFailed, reached.String())
	logging.WithStacktrace(d.jobLogger(result), err).Errorf("calculation failed after reaching state %s", reached)
	return result, nil, err
}

func (d *Director) materializationError(result *Result, err error) error {
	return errors.WithStack(&launcherrors.ErrMaterialization{Calculation: result.Calculation, Cause: err})
}

func (d *Director) jobLogger(result *Result) *logrus.Entry {
	logger := d.logger
	if result.WorkDir != "" {
		logger = logger.WithField(logging.WorkDirField, result.WorkDir)
	}
	if result.Calculation != "" {
		logger = logger.WithField(logging.CalcField, result.Calculation)
	}
	return logger
}

// AbsPath expands a leading ~ and makes path absolute.
func AbsPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.WithStack(&launcherrors.ErrInvalidArgument{Name: "workDir", Value: path, Message: err.Error()})
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, "error resolving %s", path)
	}
	return abs, nil
}

// existingFiles resolves every path and checks that it exists.
func existingFiles(paths []string) ([]string, error) {
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := AbsPath(path)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, errors.WithStack(&launcherrors.ErrFileToLinkNotFound{Path: path})
		}
		resolved = append(resolved, abs)
	}
	return resolved, nil
}
