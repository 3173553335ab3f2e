package approver

import (
	"github.com/pkg/errors"
)

// fixedDensityIscf is the one negative iscf that is still a self-consistent calculation.
const fixedDensityIscf = -3

var (
	// MandatoryVariables must be present in every input.
	MandatoryVariables = []string{"ecut", "ntypat", "znucl", "typat", "acell"}
	// ToleranceVariables are the SCF stopping criteria. Exactly one must be given.
	ToleranceVariables = []string{"toldfe", "tolwfr", "toldff", "tolrff"}
)

// convergenceModeValidator checks that non self-consistent runs (iscf < 0, except -3) stop on the
// wavefunction residual.
type convergenceModeValidator struct{}

func (v convergenceModeValidator) Validate(r request) error {
	iscf, err := r.params.Int("iscf", 0)
	if err != nil {
		return err
	}
	if iscf >= 0 || iscf == fixedDensityIscf {
		return nil
	}
	tolwfr, err := r.params.Float("tolwfr", 0.0)
	if err != nil {
		return err
	}
	if tolwfr <= 0.0 {
		return errors.New("for iscf < 0 and != -3, tolwfr must be > 0.")
	}
	return nil
}

type mandatoryVariablesValidator struct {
	mandatory []string
}

func (v mandatoryVariablesValidator) Validate(r request) error {
	if missing := r.params.Missing(v.mandatory...); len(missing) > 0 {
		return errors.Errorf("%v should be in the input file!", missing)
	}
	return nil
}

type toleranceValidator struct {
	tolerances []string
}

func (v toleranceValidator) Validate(r request) error {
	present := r.params.Present(v.tolerances...)
	switch {
	case len(present) == 0:
		return errors.Errorf("none of %v is present in the input file but exactly one is required.", v.tolerances)
	case len(present) > 1:
		return errors.Errorf("%v are present in the input file but there should be only one from %v.", present, v.tolerances)
	}
	return nil
}
