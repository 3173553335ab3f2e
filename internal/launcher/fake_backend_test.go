package launcher

import (
	"context"
	"os"

	"github.com/armadaproject/abilaunch/internal/parameters"
)

type fakeJobFile struct {
	jobName     string
	nodes       string
	ppn         int
	mpiRunNP    int
	walltime    string
	memory      string
	queue       string
	mpiRun      string
	modules     []string
	linesBefore []string
	linesAfter  []string
}

func (j *fakeJobFile) SetJobName(name string)        { j.jobName = name }
func (j *fakeJobFile) SetNodes(nodes string)         { j.nodes = nodes }
func (j *fakeJobFile) SetPPN(ppn int)                { j.ppn = ppn }
func (j *fakeJobFile) SetMPIRunNP(np int)            { j.mpiRunNP = np }
func (j *fakeJobFile) SetWalltime(walltime string)   { j.walltime = walltime }
func (j *fakeJobFile) SetMemory(memory string)       { j.memory = memory }
func (j *fakeJobFile) SetQueue(queue string)         { j.queue = queue }
func (j *fakeJobFile) SetMPIRun(command string)      { j.mpiRun = command }
func (j *fakeJobFile) SetModules(modules []string)   { j.modules = modules }
func (j *fakeJobFile) SetLinesBefore(lines []string) { j.linesBefore = lines }
func (j *fakeJobFile) SetLinesAfter(lines []string)  { j.linesAfter = lines }

type fakeBackend struct {
	calcPath   string
	executable string
	pseudoDir  string
	pseudos    []string
	stderr     string
	log        string
	params     parameters.Set
	links      []string
	job        fakeJobFile

	made      bool
	overwrite bool
	runs      int
	submits   int

	// Written to <calcPath>.in by Make, if set.
	input     []byte
	makeErr   error
	runErr    error
	submitErr error
	// Called by Run, e.g. to look at the files as they are when the calculation starts.
	onRun func()
}

func (b *fakeBackend) SetExecutable(path string) { b.executable = path }
func (b *fakeBackend) SetPseudoDir(dir string)   { b.pseudoDir = dir }
func (b *fakeBackend) SetPseudos(names []string) { b.pseudos = names }
func (b *fakeBackend) SetStderr(path string)     { b.stderr = path }
func (b *fakeBackend) SetLog(path string)        { b.log = path }
func (b *fakeBackend) JobFile() JobFile          { return &b.job }

func (b *fakeBackend) SetParameters(params parameters.Set) error {
	b.params = params
	return nil
}

func (b *fakeBackend) LinkResource(path string) error {
	b.links = append(b.links, path)
	return nil
}

func (b *fakeBackend) Make(overwrite bool) error {
	b.overwrite = overwrite
	if b.input != nil {
		if err := os.WriteFile(b.calcPath+".in", b.input, 0o644); err != nil {
			return err
		}
	}
	if b.makeErr != nil {
		return b.makeErr
	}
	b.made = true
	return nil
}

func (b *fakeBackend) Run(_ context.Context) error {
	b.runs++
	if b.onRun != nil {
		b.onRun()
	}
	return b.runErr
}

func (b *fakeBackend) Submit(_ context.Context) error {
	b.submits++
	return b.submitErr
}

// fakeFactory hands out backend, recording the path it was created for. calls counts invocations.
type fakeFactory struct {
	backend *fakeBackend
	calls   int
}

func (f *fakeFactory) create(calcPath string) (Backend, error) {
	f.calls++
	f.backend.calcPath = calcPath
	return f.backend, nil
}
