package launcher

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/armadaproject/abilaunch/internal/common/logging"
	"github.com/armadaproject/abilaunch/internal/common/util"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

// Regenerate rewrites the files of a calculation whose input file already exists at inputPath.
//
// The input file is moved to a private staging directory while the backend writes the calculation,
// with its variables read from the staged copy and overlaid with spec.Parameters. Whatever happens,
// the original input is put back byte for byte before the staging directory is removed, and only then
// is the calculation run if spec.Run is set. If the input cannot be put back the staging directory is
// kept and the returned error names the staged copy. spec.WorkDir and spec.InputName are taken from inputPath.
func (d *Director) Regenerate(ctx context.Context, inputPath string, spec JobSpec, read InputReader) (*Result, error) {
	abs, err := AbsPath(inputPath)
	if err != nil {
		return withoutBackend(d.failedEarly(err))
	}
	spec.WorkDir = filepath.Dir(abs)
	spec.InputName = filepath.Base(abs)

	staged, err := stageFile(d.tempDir, abs)
	if err != nil {
		return withoutBackend(d.failedEarly(err))
	}
	result, backend, err := d.materializeStaged(spec, staged, read)
	if err != nil {
		return result, err
	}
	return d.finish(ctx, spec, result, backend)
}

func (d *Director) materializeStaged(spec JobSpec, staged *stagedFile, read InputReader) (result *Result, backend Backend, err error) {
	defer func() {
		if restoreErr := staged.restore(); restoreErr != nil {
			restoreErr = errors.WithMessagef(restoreErr, "could not restore %s, its contents are kept at %s", staged.original, staged.path)
			logging.WithStacktrace(d.logger, restoreErr).Errorf("keeping staging directory %s", staged.dir)
			err = multierror.Append(err, restoreErr).ErrorOrNil()
			if result != nil && result.State != Failed {
				result, backend, err = d.failed(result, err)
			}
			return
		}
		if cleanupErr := staged.cleanup(); cleanupErr != nil {
			logging.WithStacktrace(d.logger, cleanupErr).Warnf("could not remove staging directory %s", staged.dir)
		}
	}()

	params, err := read(staged.path)
	if err != nil {
		return d.failedEarly(errors.Wrapf(err, "error reading %s", staged.original))
	}
	spec.Parameters = parameters.Merge(params, spec.Parameters)
	return d.materialize(spec)
}

func (d *Director) failedEarly(err error) (*Result, Backend, error) {
	result := &Result{}
	result.advance(Created)
	return d.failed(result, err)
}

func withoutBackend(result *Result, _ Backend, err error) (*Result, error) {
	return result, err
}

// stagedFile is a file moved out of the way into its own temporary directory.
type stagedFile struct {
	original string
	dir      string
	path     string
}

// stageFile copies path into a new directory under tempBase and removes the original.
// If anything fails the original is left in place.
func stageFile(tempBase string, path string) (*stagedFile, error) {
	dir, err := os.MkdirTemp(tempBase, "abilaunch-")
	if err != nil {
		return nil, errors.Wrap(err, "error creating staging directory")
	}
	s := &stagedFile{original: path, dir: dir, path: filepath.Join(dir, filepath.Base(path))}
	if err := copyFile(path, s.path); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrapf(err, "error moving %s out of the way", path)
	}
	return s, nil
}

// restore puts the staged copy back, replacing anything written at the original path in the meantime.
func (s *stagedFile) restore() error {
	return copyFile(s.path, s.original)
}

func (s *stagedFile) cleanup() error {
	return errors.WithStack(os.RemoveAll(s.dir))
}

// copyFile copies src to dst through a temporary file in the destination directory,
// so dst is either the old or the complete new contents.
func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer util.CloseResource(src, in)
	info, err := in.Stat()
	if err != nil {
		return errors.WithStack(err)
	}

	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-")
	if err != nil {
		return errors.Wrapf(err, "error copying %s", src)
	}
	tmp := out.Name()
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "error copying %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.WithStack(err)
	}
	if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
		_ = os.Remove(tmp)
		return errors.WithStack(err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "error copying %s to %s", src, dst)
	}
	return nil
}
