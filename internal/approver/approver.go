// Package approver checks a set of ABINIT input variables for problems that would make ABINIT fail outright.
//
// Unlike a dry run of ABINIT itself, approval is passive and never calls the executable: it only enforces
// presence, exclusivity and sign constraints between variables, and checks the parallel decomposition
// against the resources requested for the job.
package approver

import (
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
	"github.com/armadaproject/abilaunch/internal/common/logging"
	"github.com/armadaproject/abilaunch/internal/common/validation"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

const multiDatasetWarning = "input approval is not implemented for multidtset"

// Result is the outcome of approving one parameter set.
type Result struct {
	Valid bool `json:"valid"`
	// Every violation found, in the order the rules are evaluated.
	Errors []string `json:"errors,omitempty"`
	// Non-fatal remarks, e.g. that approval was skipped.
	Warnings []string `json:"warnings,omitempty"`
}

// Err returns nil for a valid result and an *launcherrors.ErrValidation listing every violation otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &launcherrors.ErrValidation{Violations: r.Errors}
}

// request is what the rules validate.
type request struct {
	params   parameters.Set
	parallel *ParallelDescriptor
}

type Approver struct {
	logger    *logrus.Entry
	validator validation.CompoundValidator[request]
}

// New returns an Approver with the standard rule set. A nil logger logs to the standard logger.
func New(logger *logrus.Entry) *Approver {
	return &Approver{
		logger: logging.OrStandard(logger),
		validator: validation.NewCompoundValidator[request](
			convergenceModeValidator{},
			mandatoryVariablesValidator{mandatory: MandatoryVariables},
			toleranceValidator{tolerances: ToleranceVariables},
			parallelValidator{},
		),
	}
}

// Approve checks params. If parallel is nil the parallel decomposition is not checked at all.
// Multi-dataset inputs (ndtset > 1) are not checked and always reported as valid with a warning.
func (a *Approver) Approve(params parameters.Set, parallel *ParallelDescriptor) Result {
	ndtset, err := params.Int("ndtset", 1)
	if err != nil {
		return Result{Valid: false, Errors: []string{err.Error()}}
	}
	if ndtset > 1 {
		a.logger.Warn(multiDatasetWarning)
		return Result{Valid: true, Warnings: []string{multiDatasetWarning}}
	}

	err = a.validator.ValidateAll(request{params: params, parallel: parallel})
	if err == nil {
		a.logger.Debug("parameters approved")
		return Result{Valid: true}
	}

	result := Result{Valid: false}
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			result.Errors = append(result.Errors, e.Error())
		}
	} else {
		result.Errors = []string{err.Error()}
	}
	a.logger.WithField(logging.ViolationField, result.Errors).Debug("parameters rejected")
	return result
}

// Approve checks params with the standard rule set, without logging.
func Approve(params parameters.Set, parallel *ParallelDescriptor) Result {
	return New(logging.NullEntry()).Approve(params, parallel)
}
