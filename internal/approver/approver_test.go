package approver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

// hydrogenMolecule is the H2 example from the first ABINIT tutorial.
func hydrogenMolecule() parameters.Set {
	return parameters.Set{
		"acell":     []interface{}{10, 10, 10},
		"ntypat":    1,
		"znucl":     1,
		"natom":     2,
		"typat":     []interface{}{1, 1},
		"xcart":     []interface{}{[]interface{}{-0.7, 0.0, 0.0}, []interface{}{0.7, 0.0, 0.0}},
		"ecut":      10.0,
		"kptopt":    0,
		"nkpt":      1,
		"nstep":     10,
		"toldfe":    1.0e-6,
		"diemac":    2.0,
		"optforces": 1,
	}
}

func without(params parameters.Set, names ...string) parameters.Set {
	params = params.Clone()
	for _, name := range names {
		delete(params, name)
	}
	return params
}

func with(params parameters.Set, overlay parameters.Set) parameters.Set {
	return parameters.Merge(params, overlay)
}

func TestApprove_Valid(t *testing.T) {
	result := Approve(hydrogenMolecule(), nil)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err())
}

func TestApprove_MissingMandatoryVariables(t *testing.T) {
	tests := map[string][]string{
		"ecut":             {"ecut"},
		"acell":            {"acell"},
		"ntypat and typat": {"ntypat", "typat"},
		"all":              {"ecut", "ntypat", "znucl", "typat", "acell"},
	}
	for name, missing := range tests {
		t.Run(name, func(t *testing.T) {
			result := Approve(without(hydrogenMolecule(), missing...), nil)
			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, fmt.Sprintf("%v should be in the input file!", missing), result.Errors[0])
		})
	}
}

func TestApprove_Tolerances(t *testing.T) {
	tests := map[string]struct {
		params        parameters.Set
		expectSuccess bool
		expectedError string
	}{
		"only toldfe": {
			params:        hydrogenMolecule(),
			expectSuccess: true,
		},
		"only tolrff": {
			params:        with(without(hydrogenMolecule(), "toldfe"), parameters.Set{"tolrff": 0.02}),
			expectSuccess: true,
		},
		"none": {
			params:        without(hydrogenMolecule(), "toldfe"),
			expectedError: "none of [toldfe tolwfr toldff tolrff] is present in the input file but exactly one is required.",
		},
		"two": {
			params:        with(hydrogenMolecule(), parameters.Set{"toldff": 1e-5}),
			expectedError: "[toldfe toldff] are present in the input file but there should be only one from [toldfe tolwfr toldff tolrff].",
		},
		"three": {
			params:        with(hydrogenMolecule(), parameters.Set{"tolwfr": 1e-14, "tolrff": 0.02}),
			expectedError: "[toldfe tolwfr tolrff] are present in the input file but there should be only one from [toldfe tolwfr toldff tolrff].",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result := Approve(tc.params, nil)
			assert.Equal(t, tc.expectSuccess, result.Valid)
			if tc.expectSuccess {
				assert.Empty(t, result.Errors)
			} else {
				assert.Equal(t, []string{tc.expectedError}, result.Errors)
			}
		})
	}
}

func TestApprove_ConvergenceMode(t *testing.T) {
	nscf := with(without(hydrogenMolecule(), "toldfe"), parameters.Set{"iscf": -2})

	tests := map[string]struct {
		params        parameters.Set
		expectSuccess bool
	}{
		"scf without tolwfr": {
			params:        hydrogenMolecule(),
			expectSuccess: true,
		},
		"nscf with positive tolwfr": {
			params:        with(nscf, parameters.Set{"tolwfr": 1e-12}),
			expectSuccess: true,
		},
		"nscf with zero tolwfr": {
			params:        with(nscf, parameters.Set{"tolwfr": 0.0}),
			expectSuccess: false,
		},
		"iscf -3 with toldfe": {
			params:        with(hydrogenMolecule(), parameters.Set{"iscf": -3}),
			expectSuccess: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result := Approve(tc.params, nil)
			assert.Equal(t, tc.expectSuccess, result.Valid, result.Errors)
		})
	}
}

func TestApprove_CollectsEveryViolation(t *testing.T) {
	params := parameters.Set{"iscf": -2, "toldfe": 1e-6, "toldff": 1e-5, "ecut": 10}

	result := Approve(params, nil)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"for iscf < 0 and != -3, tolwfr must be > 0.",
		"[ntypat znucl typat acell] should be in the input file!",
		"[toldfe toldff] are present in the input file but there should be only one from [toldfe tolwfr toldff tolrff].",
	}, result.Errors)

	var validationErr *launcherrors.ErrValidation
	require.ErrorAs(t, result.Err(), &validationErr)
	assert.Equal(t, result.Errors, validationErr.Violations)
}

func TestApprove_MultiDatasetBypass(t *testing.T) {
	for _, params := range []parameters.Set{
		{"ndtset": 2},
		{"ndtset": 3, "toldfe": 1e-6, "tolwfr": 1e-10, "iscf": -2},
		with(hydrogenMolecule(), parameters.Set{"ndtset": 5.0}),
	} {
		result := Approve(params, &ParallelDescriptor{ProcsPerNode: intPtr(1), MPIProcesses: intPtr(4)})
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
		assert.Equal(t, []string{multiDatasetWarning}, result.Warnings)
	}
}

func TestApprove_NonNumericValue(t *testing.T) {
	result := Approve(with(hydrogenMolecule(), parameters.Set{"iscf": "often"}), nil)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"iscf must be an integer, got often"}, result.Errors)

	result = Approve(parameters.Set{"ndtset": "two"}, nil)
	assert.False(t, result.Valid)
}
