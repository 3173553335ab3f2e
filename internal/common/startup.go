package common

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const logLevelEnvVar = "ABILAUNCH_LOG_LEVEL"

// ConfigureCommandLineLogging sets up logrus for interactive use: text output on stdout with full timestamps.
// The level can be overridden with the ABILAUNCH_LOG_LEVEL environment variable.
func ConfigureCommandLineLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)
	if level, ok := os.LookupEnv(logLevelEnvVar); ok {
		if err := SetLogLevel(level); err != nil {
			log.WithError(err).Warnf("ignoring %s", logLevelEnvVar)
		}
	}
}

// SetLogLevel parses level (e.g. "debug", "INFO") and applies it to the standard logger.
func SetLogLevel(level string) error {
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return errors.WithStack(err)
	}
	log.SetLevel(parsed)
	return nil
}
