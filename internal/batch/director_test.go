package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
	"github.com/armadaproject/abilaunch/internal/common/logging"
	"github.com/armadaproject/abilaunch/internal/configuration"
	"github.com/armadaproject/abilaunch/internal/launcher"
	"github.com/armadaproject/abilaunch/internal/metrics"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

type recordingLauncher struct {
	mu    sync.Mutex
	specs map[string]launcher.JobSpec
	// failures maps an input name to the error its launch returns.
	failures map[string]error
}

func newRecordingLauncher() *recordingLauncher {
	return &recordingLauncher{specs: map[string]launcher.JobSpec{}, failures: map[string]error{}}
}

func (l *recordingLauncher) Launch(_ context.Context, spec launcher.JobSpec) (*launcher.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specs[spec.InputName] = spec
	result := &launcher.Result{WorkDir: spec.WorkDir, Calculation: launcher.CalculationName(spec.InputName, spec.WorkDir), State: launcher.Done}
	if err := l.failures[spec.InputName]; err != nil {
		result.State = launcher.Failed
		return result, err
	}
	return result, nil
}

func TestLaunch(t *testing.T) {
	workDir := filepath.Join(t.TempDir(), "convergence")
	jobs := newRecordingLauncher()
	m := metrics.New()

	report, err := NewDirector(jobs, WithLogger(logging.NullEntry()), WithMetrics(m)).Launch(context.Background(), ecutSpec(workDir, 5, 10, 15))
	require.NoError(t, err)

	assert.NotEmpty(t, report.BatchId)
	assert.Equal(t, workDir, report.WorkDir)
	assert.Equal(t, []int{0, 1, 2}, report.Succeeded())
	assert.Empty(t, report.Failed())
	for i, name := range []string{"ecut5", "ecut10", "ecut15"} {
		assert.DirExists(t, filepath.Join(workDir, name))
		assert.Equal(t, i, report.Jobs[i].Index)
		assert.Equal(t, name+".in", report.Jobs[i].InputName)
		assert.Equal(t, launcher.Done, report.Jobs[i].Result.State)
	}
	assert.Len(t, jobs.specs, 3)
}

func TestLaunch_CardinalityMismatchCreatesNothing(t *testing.T) {
	workDir := filepath.Join(t.TempDir(), "convergence")
	spec := ecutSpec(workDir, 5, 10, 15)
	spec.JobOptions = map[string]PerJob[interface{}]{"ppn": Each[interface{}](1, 2)}
	jobs := newRecordingLauncher()

	report, err := NewDirector(jobs, WithLogger(logging.NullEntry())).Launch(context.Background(), spec)

	var mismatch *launcherrors.ErrCardinalityMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Nil(t, report)
	assert.Empty(t, jobs.specs)
	_, statErr := os.Stat(workDir)
	assert.True(t, os.IsNotExist(statErr), "batch directory should not have been created")
}

func TestLaunch_FailuresDoNotStopTheBatch(t *testing.T) {
	workDir := t.TempDir()
	jobs := newRecordingLauncher()
	jobs.failures["ecut10.in"] = errors.WithStack(&launcherrors.ErrValidation{Violations: []string{"['ecut'] should be in the input file!"}})

	report, err := NewDirector(jobs, WithLogger(logging.NullEntry())).Launch(context.Background(), ecutSpec(workDir, 5, 10, 15))

	require.Error(t, err)
	var invalid *launcherrors.ErrValidation
	assert.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "job 1 (ecut10.in)")
	assert.Equal(t, []int{0, 2}, report.Succeeded())
	assert.Equal(t, []int{1}, report.Failed())
	assert.Len(t, jobs.specs, 3)
	assert.Equal(t, launcher.Failed, report.Jobs[1].Result.State)
}

func TestLaunch_Parallel(t *testing.T) {
	workDir := t.TempDir()
	spec := ecutSpec(workDir, 5, 10, 15, 20)
	spec.Parallelism = 2
	jobs := newRecordingLauncher()
	jobs.failures["ecut15.in"] = errors.New("boom")

	report, err := NewDirector(jobs, WithLogger(logging.NullEntry())).Launch(context.Background(), spec)

	require.Error(t, err)
	assert.Equal(t, []int{0, 1, 3}, report.Succeeded())
	assert.Equal(t, []int{2}, report.Failed())
	for i, name := range []string{"ecut5.in", "ecut10.in", "ecut15.in", "ecut20.in"} {
		assert.Equal(t, name, report.Jobs[i].InputName)
	}
}

func TestLaunch_WithJobDirector(t *testing.T) {
	dir := t.TempDir()
	pseudo := filepath.Join(dir, "01h.pspgth")
	require.NoError(t, os.WriteFile(pseudo, []byte("pseudo"), 0o644))
	backends := map[string]*countingBackend{}
	var mu sync.Mutex
	factory := func(calcPath string) (launcher.Backend, error) {
		mu.Lock()
		defer mu.Unlock()
		b := &countingBackend{}
		backends[calcPath] = b
		return b, nil
	}
	jobDirector := launcher.NewDirector(launcherConfig(), factory, launcher.WithLogger(logging.NullEntry()))
	spec := ecutSpec(filepath.Join(dir, "batch"), 5, 10)
	spec.CommonPseudos = StringList{pseudo}
	delete(spec.ParameterOverlays[1], "ecut")
	delete(spec.BaseParameters, "ecut")

	report, err := NewDirector(jobDirector, WithLogger(logging.NullEntry())).Launch(context.Background(), spec)

	var invalid *launcherrors.ErrValidation
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []int{0}, report.Succeeded())
	assert.Equal(t, launcher.Created, report.Jobs[1].Result.FailedIn)
	require.Len(t, backends, 1)
	assert.True(t, backends[filepath.Join(dir, "batch", "ecut5", "ecut5")].made)
}

func launcherConfig() configuration.LauncherConfig {
	return configuration.LauncherConfig{ExecutablePath: "abinit", DefaultPseudosDir: "none"}
}

type noopJobFile struct{}

func (noopJobFile) SetJobName(string)       {}
func (noopJobFile) SetNodes(string)         {}
func (noopJobFile) SetPPN(int)              {}
func (noopJobFile) SetMPIRunNP(int)         {}
func (noopJobFile) SetWalltime(string)      {}
func (noopJobFile) SetMemory(string)        {}
func (noopJobFile) SetQueue(string)         {}
func (noopJobFile) SetMPIRun(string)        {}
func (noopJobFile) SetModules([]string)     {}
func (noopJobFile) SetLinesBefore([]string) {}
func (noopJobFile) SetLinesAfter([]string)  {}

// countingBackend only remembers whether it was made.
type countingBackend struct {
	made bool
}

func (b *countingBackend) SetExecutable(string)               {}
func (b *countingBackend) SetPseudoDir(string)                {}
func (b *countingBackend) SetPseudos([]string)                {}
func (b *countingBackend) SetStderr(string)                   {}
func (b *countingBackend) SetLog(string)                      {}
func (b *countingBackend) SetParameters(parameters.Set) error { return nil }
func (b *countingBackend) LinkResource(string) error          { return nil }
func (b *countingBackend) JobFile() launcher.JobFile          { return noopJobFile{} }
func (b *countingBackend) Make(bool) error                    { b.made = true; return nil }
func (b *countingBackend) Run(context.Context) error          { return nil }
func (b *countingBackend) Submit(context.Context) error       { return nil }
