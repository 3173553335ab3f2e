package abilaunch

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/abilaunch/internal/calculation"
	"github.com/armadaproject/abilaunch/internal/common/logging"
	"github.com/armadaproject/abilaunch/internal/common/util"
	"github.com/armadaproject/abilaunch/internal/configuration"
	"github.com/armadaproject/abilaunch/internal/launcher"
	"github.com/armadaproject/abilaunch/internal/metrics"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// Backends creates the backend of each calculation. Defaults to the local file system backend.
	Backends launcher.BackendFactory
	Clock    util.Clock
}

// Params struct holds all user-customizable parameters.
// Using a single struct for all CLI commands ensures that all flags are distinct.
type Params struct {
	// Path of the launcher configuration file. Defaults to configuration.DefaultPath().
	ConfigPath string
	// If set, metrics are written to this file in the Prometheus text format when a command finishes.
	MetricsFile string
	// Directory under which input files are staged during regeneration. Defaults to os.TempDir().
	TempDir string

	Batch      BatchParams
	Approve    ApproveParams
	Regenerate RegenerateParams
}

// New instantiates an App with default parameters, writing to standard out.
func New() *App {
	return &App{
		Params:   &Params{},
		Out:      os.Stdout,
		Backends: calculation.Factory(),
		Clock:    &util.DefaultClock{},
	}
}

func (a *App) logger() *log.Entry {
	return log.NewEntry(log.StandardLogger())
}

// newMetrics returns the metrics of one command, counting the log lines of the standard logger.
func (a *App) newMetrics() *metrics.Metrics {
	m := metrics.New()
	if err := m.CountLogMessages(log.StandardLogger()); err != nil {
		logging.WithStacktrace(a.logger(), err).Warn("log messages will not be counted")
	}
	return m
}

func (a *App) jobDirector(config configuration.LauncherConfig, m *metrics.Metrics) *launcher.Director {
	opts := []launcher.Option{
		launcher.WithLogger(a.logger()),
		launcher.WithMetrics(m),
		launcher.WithClock(a.Clock),
	}
	if a.Params.TempDir != "" {
		opts = append(opts, launcher.WithTempDir(a.Params.TempDir))
	}
	return launcher.NewDirector(config, a.Backends, opts...)
}

func (a *App) writeMetrics(m *metrics.Metrics) {
	if err := m.WriteTextfile(a.Params.MetricsFile); err != nil {
		logging.WithStacktrace(a.logger(), err).Warn("could not write metrics")
	}
}

// readYAML decodes a YAML or JSON file into obj.
func readYAML(path string, obj interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := yaml.UnmarshalStrict(data, obj); err != nil {
		return errors.Wrapf(err, "error parsing %s", path)
	}
	return nil
}
