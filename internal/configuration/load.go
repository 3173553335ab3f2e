// Package configuration loads the per-user launcher configuration.
//
// The configuration is an INI file with a single [DEFAULT] section:
//
//	[DEFAULT]
//	abinit_path = /opt/abinit/bin/abinit
//	default_pseudos_dir = ~/pseudos
//	qsub = false
package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	commonconfig "github.com/armadaproject/abilaunch/internal/common/config"
	"github.com/armadaproject/abilaunch/internal/pseudos"
)

const (
	section     = "default"
	configType  = "ini"
	defaultFile = "abilaunch"
)

// RequiredKeys must all be present in the configuration file.
var RequiredKeys = []string{"abinit_path", "default_pseudos_dir", "qsub"}

// DefaultPath returns $HOME/.config/abilaunch.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error getting user home directory")
	}
	return filepath.Join(home, ".config", defaultFile), nil
}

// Load reads the configuration file at path. An empty path means DefaultPath.
// A missing file, a missing key or an unreadable value are all errors.
func Load(path string) (LauncherConfig, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return LauncherConfig{}, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		return LauncherConfig{}, errors.Wrapf(err, "error reading configuration file %s", path)
	}

	var missing []string
	for _, key := range RequiredKeys {
		if !v.IsSet(section + "." + key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return LauncherConfig{}, errors.Errorf("configuration file %s is missing required key(s) %v", path, missing)
	}

	var fileConfig FileConfig
	if err := v.Sub(section).Unmarshal(&fileConfig, commonconfig.CustomHooks...); err != nil {
		return LauncherConfig{}, errors.Wrapf(err, "error parsing configuration file %s", path)
	}
	return fileConfig.launcherConfig()
}

func (c FileConfig) launcherConfig() (LauncherConfig, error) {
	if strings.TrimSpace(c.AbinitPath) == "" {
		return LauncherConfig{}, errors.New("abinit_path must not be empty")
	}
	config := LauncherConfig{
		ExecutablePath: c.AbinitPath,
		SubmitViaQueue: c.Qsub,
	}

	dir := strings.TrimSpace(c.DefaultPseudosDir)
	if dir != "" && !strings.EqualFold(dir, pseudos.NoDefaultDir) {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return LauncherConfig{}, errors.Wrapf(err, "error expanding default_pseudos_dir %s", dir)
		}
		if config.DefaultPseudosDir, err = filepath.Abs(expanded); err != nil {
			return LauncherConfig{}, errors.Wrapf(err, "error resolving default_pseudos_dir %s", dir)
		}
	}
	return config, nil
}

// WriteDefault creates a configuration file at path that runs "abinit" from $PATH, disables the default
// pseudopotential directory and runs calculations directly. An existing file is left untouched; the
// returned bool reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.WithStack(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrapf(err, "error creating configuration directory for %s", path)
	}
	contents := fmt.Sprintf("[DEFAULT]\nabinit_path = %s\ndefault_pseudos_dir = %s\nqsub = %t\n", "abinit", pseudos.NoDefaultDir, false)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return false, errors.Wrapf(err, "error writing configuration file %s", path)
	}
	return true, nil
}
