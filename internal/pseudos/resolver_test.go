package pseudos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("pseudo"), 0o644))
	return path
}

func TestNewResolver_NoneDisablesFallback(t *testing.T) {
	assert.Equal(t, "", NewResolver("none").DefaultDir())
	assert.Equal(t, "", NewResolver("NONE").DefaultDir())
	assert.Equal(t, "", NewResolver("").DefaultDir())
	assert.Equal(t, "/pseudos", NewResolver("/pseudos").DefaultDir())
}

func TestResolveOne(t *testing.T) {
	dir := t.TempDir()
	defaultDir := filepath.Join(dir, "default")
	direct := touch(t, filepath.Join(dir, "here", "01h.pspgth"))
	touch(t, filepath.Join(defaultDir, "06c.pspnc"))
	touch(t, filepath.Join(defaultDir, "08o.pspnc"))

	tests := map[string]struct {
		defaultDir string
		ref        string
		expected   string
		expectErr  bool
	}{
		"existing path": {
			defaultDir: defaultDir,
			ref:        direct,
			expected:   direct,
		},
		"found in default dir": {
			defaultDir: defaultDir,
			ref:        "06c.pspnc",
			expected:   filepath.Join(defaultDir, "06c.pspnc"),
		},
		"absolute path found in default dir by name": {
			defaultDir: defaultDir,
			ref:        filepath.Join(dir, "elsewhere", "08o.pspnc"),
			expected:   filepath.Join(defaultDir, "08o.pspnc"),
		},
		"fallback disabled": {
			defaultDir: "none",
			ref:        "06c.pspnc",
			expectErr:  true,
		},
		"missing everywhere": {
			defaultDir: defaultDir,
			ref:        "79au.psp8",
			expectErr:  true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path, err := NewResolver(tc.defaultDir).ResolveOne(tc.ref)
			if tc.expectErr {
				var notFound *launcherrors.ErrResourceNotFound
				require.ErrorAs(t, err, &notFound)
				assert.Equal(t, tc.ref, notFound.Reference)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, path)
		})
	}
}

func TestResolveOne_ExpandsHome(t *testing.T) {
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()
	home := t.TempDir()
	t.Setenv("HOME", home)
	touch(t, filepath.Join(home, "pseudos", "01h.pspgth"))

	path, err := NewResolver("none").ResolveOne("~/pseudos/01h.pspgth")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "pseudos", "01h.pspgth"), path)
}

func TestResolveSet(t *testing.T) {
	dir := t.TempDir()
	direct := touch(t, filepath.Join(dir, "01h.pspgth"))
	touch(t, filepath.Join(dir, "06c.pspnc"))

	pseudoDir, names, err := NewResolver(dir).ResolveSet([]string{"06c.pspnc", direct})

	require.NoError(t, err)
	assert.Equal(t, dir, pseudoDir)
	assert.Equal(t, []string{"06c.pspnc", "01h.pspgth"}, names)
}

func TestResolveSet_MultipleDirectories(t *testing.T) {
	dir := t.TempDir()
	first := touch(t, filepath.Join(dir, "a", "01h.pspgth"))
	second := touch(t, filepath.Join(dir, "b", "06c.pspnc"))

	_, _, err := NewResolver("none").ResolveSet([]string{first, second})

	var multiple *launcherrors.ErrMultipleDirectories
	require.ErrorAs(t, err, &multiple)
	assert.Equal(t, []string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}, multiple.Directories)
}

func TestResolveSet_Errors(t *testing.T) {
	_, _, err := NewResolver("none").ResolveSet(nil)
	var invalid *launcherrors.ErrInvalidArgument
	assert.ErrorAs(t, err, &invalid)

	_, _, err = NewResolver("none").ResolveSet([]string{filepath.Join(t.TempDir(), "missing.psp8")})
	var notFound *launcherrors.ErrResourceNotFound
	assert.ErrorAs(t, err, &notFound)
}
