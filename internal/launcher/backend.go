package launcher

import (
	"context"

	"github.com/armadaproject/abilaunch/internal/parameters"
)

// Backend is what the director needs from a simulation backend to write, run and submit one calculation.
type Backend interface {
	SetExecutable(path string)
	SetPseudoDir(dir string)
	SetPseudos(names []string)
	SetStderr(path string)
	SetLog(path string)
	// SetParameters replaces the input variables written by Make.
	SetParameters(params parameters.Set) error
	// LinkResource links an existing file into the input data area of the calculation.
	LinkResource(path string) error
	JobFile() JobFile
	// Make writes the calculation files. Existing files are only replaced if overwrite is set.
	Make(overwrite bool) error
	Run(ctx context.Context) error
	Submit(ctx context.Context) error
}

// JobFile holds the settings of the script used to run or submit a calculation.
type JobFile interface {
	SetJobName(name string)
	SetNodes(nodes string)
	SetPPN(ppn int)
	SetMPIRunNP(np int)
	SetWalltime(walltime string)
	SetMemory(memory string)
	SetQueue(queue string)
	SetMPIRun(command string)
	SetModules(modules []string)
	SetLinesBefore(lines []string)
	SetLinesAfter(lines []string)
}

// BackendFactory returns a backend for the calculation whose files are named after calcPath,
// i.e. the working directory joined with the calculation name.
type BackendFactory func(calcPath string) (Backend, error)

// InputReader reads the variables of an existing input file.
type InputReader func(path string) (parameters.Set, error)
