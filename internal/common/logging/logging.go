package logging

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	Stacktrace     = "stacktrace"
	WorkDirField   = "workDir"
	CalcField      = "calculation"
	BatchIdField   = "batchId"
	JobIndexField  = "jobIndex"
	DurationField  = "duration"
	ViolationField = "violations"
)

// NullLogger discards everything. Handy in tests where log output is noise.
var NullLogger = &logrus.Logger{
	Out:       io.Discard,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.PanicLevel,
}

// NullEntry is NullLogger wrapped in an entry, for components that take a *logrus.Entry.
func NullEntry() *logrus.Entry {
	return logrus.NewEntry(NullLogger)
}

// OrStandard returns entry, or an entry on the standard logger if entry is nil.
func OrStandard(entry *logrus.Entry) *logrus.Entry {
	if entry == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return entry
}

// Unexported but considered part of the stable interface of pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Unexported but considered part of the stable interface of pkg/errors.
type causer interface {
	Cause() error
}

// WithStacktrace returns a new logrus.Entry with the error and, if one was recorded, its stack trace.
func WithStacktrace(logger *logrus.Entry, err error) *logrus.Entry {
	logger = logger.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		logger = logger.WithField(Stacktrace, stack)
	}
	return logger
}

// ExtractStack walks down the cause chain and returns the first errors.StackTrace it finds, or nil.
func ExtractStack(err error) errors.StackTrace {
	if stackErr, ok := err.(stackTracer); ok {
		return stackErr.StackTrace()
	} else if causeErr, ok := err.(causer); ok {
		return ExtractStack(causeErr.Cause())
	}
	return nil
}
