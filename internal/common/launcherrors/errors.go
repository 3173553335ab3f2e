// Package launcherrors contains the errors returned while validating, staging and launching calculations.
//
// Callers should look for these types with errors.As; they are usually wrapped with github.com/pkg/errors
// to carry a stack trace. Where several independent problems are found (e.g. multiple parameter violations
// or multiple failed jobs in a batch) they are collected into a multierror.Error from
// github.com/hashicorp/go-multierror.
package launcherrors

import (
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned when a caller passes something the launcher can never accept,
// e.g. a job without any parameters. Message is optional.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "parameters"
	Value   interface{} // The invalid value that was provided
	Message string      // Optional explanation
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for field %q", err.Value, err.Name)
	}
	return fmt.Sprintf("value %v is invalid for field %q; %s", err.Value, err.Name, err.Message)
}

// ErrValidation is returned when the parameter approver rejects a parameter set.
// Violations holds every problem found, in the order they were detected.
type ErrValidation struct {
	Violations []string
}

func (err *ErrValidation) Error() string {
	return fmt.Sprintf("invalid parameters (%d problem(s)): %s", len(err.Violations), strings.Join(err.Violations, "; "))
}

// ErrResourceNotFound is returned when a pseudopotential (or other resource) can be found neither at the
// given path nor in the default resource directory.
type ErrResourceNotFound struct {
	Reference string
	Searched  []string
}

func (err *ErrResourceNotFound) Error() string {
	if len(err.Searched) == 0 {
		return fmt.Sprintf("resource not found: %s", err.Reference)
	}
	return fmt.Sprintf("resource not found: %s (searched %s)", err.Reference, strings.Join(err.Searched, ", "))
}

// ErrMultipleDirectories is returned when the resources of one calculation do not share a single directory.
type ErrMultipleDirectories struct {
	Directories []string
}

func (err *ErrMultipleDirectories) Error() string {
	return fmt.Sprintf("resources must share one directory, found %d: %s", len(err.Directories), strings.Join(err.Directories, ", "))
}

// ErrFileToLinkNotFound is returned when a file requested to be linked into a calculation does not exist.
type ErrFileToLinkNotFound struct {
	Path string
}

func (err *ErrFileToLinkNotFound) Error() string {
	return fmt.Sprintf("file to link not found: %s", err.Path)
}

// ErrMaterialization is returned when the backend could not write the calculation files.
type ErrMaterialization struct {
	Calculation string
	Cause       error
}

func (err *ErrMaterialization) Error() string {
	return fmt.Sprintf("could not write files for calculation %s: %s", err.Calculation, err.Cause)
}

func (err *ErrMaterialization) Unwrap() error {
	return err.Cause
}

// ErrCardinalityMismatch is returned when a per-job field of a batch does not have one entry per job.
type ErrCardinalityMismatch struct {
	Field string
	Got   int
	Want  int
}

func (err *ErrCardinalityMismatch) Error() string {
	return fmt.Sprintf("field %q has %d entries but the batch has %d jobs", err.Field, err.Got, err.Want)
}

// ErrExecution wraps a failure reported by the simulation backend while running or submitting a calculation.
// The backend's own diagnostic is kept as the cause.
type ErrExecution struct {
	Calculation string
	Submitted   bool
	Cause       error
}

func (err *ErrExecution) Error() string {
	verb := "running"
	if err.Submitted {
		verb = "submitting"
	}
	return fmt.Sprintf("error %s calculation %s: %s", verb, err.Calculation, err.Cause)
}

func (err *ErrExecution) Unwrap() error {
	return err.Cause
}
