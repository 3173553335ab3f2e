// Package calculation writes, runs and submits ABINIT calculations on the local file system.
//
// A calculation named calcPath (a working directory joined with a base name) consists of
//
//   - <name>.in, the input variables,
//   - <name>.files, the files file read by ABINIT on its standard input,
//   - <name>.sh, a job script suitable for qsub,
//   - input_data, out_data and tmp_data directories for the data files.
package calculation

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/armadaproject/abilaunch/internal/common/logging"
	"github.com/armadaproject/abilaunch/internal/launcher"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

const (
	DefaultSubmitCommand = "qsub"

	outputMarker = "_o_"
)

type Calculation struct {
	workDir   string
	name      string
	pseudoDir string
	pseudos   []string
	params    parameters.Set
	job       *JobFile

	submitCommand string
	logger        *logrus.Entry
}

type Option func(*Calculation)

// WithSubmitCommand replaces qsub as the command used to submit job files.
func WithSubmitCommand(command string) Option {
	return func(c *Calculation) { c.submitCommand = command }
}

func WithLogger(logger *logrus.Entry) Option {
	return func(c *Calculation) { c.logger = logger }
}

func New(calcPath string, opts ...Option) *Calculation {
	c := &Calculation{
		workDir:       filepath.Dir(calcPath),
		name:          filepath.Base(calcPath),
		job:           newJobFile(),
		submitCommand: DefaultSubmitCommand,
	}
	c.job.WorkDir = c.workDir
	c.job.FilesFile = c.path(".files")
	c.job.Log = c.path(".log")
	c.job.Stderr = filepath.Join(c.workDir, "stderr")
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrStandard(c.logger).WithField(logging.CalcField, calcPath)
	return c
}

// Factory returns a launcher.BackendFactory creating calculations with the given options.
func Factory(opts ...Option) launcher.BackendFactory {
	return func(calcPath string) (launcher.Backend, error) {
		return New(calcPath, opts...), nil
	}
}

func (c *Calculation) SetExecutable(path string) { c.job.Executable = path }
func (c *Calculation) SetPseudoDir(dir string)   { c.pseudoDir = dir }
func (c *Calculation) SetPseudos(names []string) { c.pseudos = names }
func (c *Calculation) SetStderr(path string)     { c.job.Stderr = path }
func (c *Calculation) SetLog(path string)        { c.job.Log = path }

func (c *Calculation) JobFile() launcher.JobFile { return c.job }

func (c *Calculation) SetParameters(params parameters.Set) error {
	if params == nil {
		return errors.New("parameters must not be nil")
	}
	c.params = params.Clone()
	return nil
}

func (c *Calculation) InputPath() string   { return c.path(".in") }
func (c *Calculation) FilesPath() string   { return c.path(".files") }
func (c *Calculation) JobFilePath() string { return c.path(".sh") }

// Make writes the input file, the files file and the job file, creates empty log and stderr files
// and the data directories. If any of the files exists and overwrite is false nothing is written.
func (c *Calculation) Make(overwrite bool) error {
	if c.params == nil {
		return errors.New("no input variables set")
	}
	logs := c.logFiles()
	files := append([]string{c.InputPath(), c.FilesPath(), c.JobFilePath()}, logs...)
	if !overwrite {
		for _, path := range files {
			if _, err := os.Stat(path); err == nil {
				return errors.Errorf("%s already exists and overwrite is not set", path)
			}
		}
	}

	for _, dir := range []string{c.workDir, c.dataDir(inputDataDir), c.dataDir(outputDataDir), c.dataDir(tmpDataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "error creating %s", dir)
		}
	}

	if err := writeFile(c.InputPath(), 0o644, func(f *os.File) error { return WriteInput(f, c.params) }); err != nil {
		return err
	}
	if err := writeFile(c.FilesPath(), 0o644, func(f *os.File) error {
		_, err := filesFor(c.name, c.pseudoDir, c.pseudos).WriteTo(f)
		return err
	}); err != nil {
		return err
	}
	if err := writeFile(c.JobFilePath(), 0o755, func(f *os.File) error {
		_, err := c.job.WriteTo(f)
		return err
	}); err != nil {
		return err
	}
	for _, path := range logs {
		if err := writeFile(path, 0o644, func(*os.File) error { return nil }); err != nil {
			return err
		}
	}
	c.logger.Debugf("wrote %s", strings.Join(files, ", "))
	return nil
}

// logFiles returns the log and stderr paths that have been set.
func (c *Calculation) logFiles() []string {
	var paths []string
	for _, path := range []string{c.job.Log, c.job.Stderr} {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// LinkResource symlinks path into the input data directory. Output files of another calculation
// (named <prefix>_o_<suffix>) are linked under this calculation's input prefix so ABINIT picks them up,
// e.g. run1_o_WFK becomes input_data/idat_<name>_WFK.
func (c *Calculation) LinkResource(path string) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.MkdirAll(c.dataDir(inputDataDir), 0o755); err != nil {
		return errors.WithStack(err)
	}
	link := filepath.Join(c.dataDir(inputDataDir), linkName(c.name, filepath.Base(path)))
	if info, err := os.Lstat(link); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			return errors.Errorf("%s exists and is not a link", link)
		}
		if err := os.Remove(link); err != nil {
			return errors.WithStack(err)
		}
	}
	if err := os.Symlink(target, link); err != nil {
		return errors.Wrapf(err, "error linking %s", path)
	}
	c.logger.Debugf("linked %s to %s", target, link)
	return nil
}

func linkName(calcName string, base string) string {
	if i := strings.LastIndex(base, outputMarker); i >= 0 {
		return "idat_" + calcName + "_" + base[i+len(outputMarker):]
	}
	return base
}

func (c *Calculation) path(suffix string) string {
	return filepath.Join(c.workDir, c.name+suffix)
}

func (c *Calculation) dataDir(name string) string {
	return filepath.Join(c.workDir, name)
}

func writeFile(path string, perm os.FileMode, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "error writing %s", path)
	}
	return errors.WithStack(f.Close())
}

var _ launcher.Backend = &Calculation{}
