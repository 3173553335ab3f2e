// Package pseudos locates the pseudopotential files of a calculation.
package pseudos

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
)

// NoDefaultDir disables the lookup of pseudopotentials in a default directory.
const NoDefaultDir = "none"

// Resolver turns pseudopotential references into absolute paths. References that do not exist as given
// are looked up in the default directory, if one is configured.
type Resolver struct {
	defaultDir string
}

// NewResolver returns a Resolver falling back to defaultDir. An empty defaultDir or "none" disables the fallback.
func NewResolver(defaultDir string) *Resolver {
	if strings.EqualFold(strings.TrimSpace(defaultDir), NoDefaultDir) {
		defaultDir = ""
	}
	return &Resolver{defaultDir: defaultDir}
}

// DefaultDir returns the fallback directory, or "" if there is none.
func (r *Resolver) DefaultDir() string {
	return r.defaultDir
}

// ResolveOne returns the absolute path of the pseudopotential ref refers to.
//
// A leading ~ is expanded to the user's home directory. If the resulting path does not exist, the reference
// is looked up relative to the default directory; absolute references are looked up by file name.
func (r *Resolver) ResolveOne(ref string) (string, error) {
	expanded, err := homedir.Expand(ref)
	if err != nil {
		return "", errors.Wrapf(err, "error expanding resource path %s", ref)
	}
	searched := []string{expanded}
	if exists(expanded) {
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return "", errors.Wrapf(err, "error resolving absolute path of %s", ref)
		}
		return abs, nil
	}

	if r.defaultDir != "" {
		candidate := filepath.Join(r.defaultDir, expanded)
		if filepath.IsAbs(expanded) {
			candidate = filepath.Join(r.defaultDir, filepath.Base(expanded))
		}
		searched = append(searched, candidate)
		if exists(candidate) {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", errors.Wrapf(err, "error resolving absolute path of %s", candidate)
			}
			return abs, nil
		}
	}

	return "", errors.WithStack(&launcherrors.ErrResourceNotFound{Reference: ref, Searched: searched})
}

// ResolveSet resolves every reference and returns their common directory together with their file names,
// in the order given. All references must resolve into the same directory because ABINIT reads every
// pseudopotential of a calculation from a single directory.
func (r *Resolver) ResolveSet(refs []string) (string, []string, error) {
	if len(refs) == 0 {
		return "", nil, errors.WithStack(&launcherrors.ErrInvalidArgument{
			Name:    "pseudos",
			Value:   refs,
			Message: "at least one pseudopotential is required",
		})
	}

	var dirs []string
	seen := map[string]bool{}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		path, err := r.ResolveOne(ref)
		if err != nil {
			return "", nil, err
		}
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
		names = append(names, filepath.Base(path))
	}

	if len(dirs) > 1 {
		return "", nil, errors.WithStack(&launcherrors.ErrMultipleDirectories{Directories: dirs})
	}
	return dirs[0], names, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
