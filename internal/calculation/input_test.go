package calculation

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/abilaunch/internal/parameters"
)

func TestWriteInput(t *testing.T) {
	params := parameters.Set{
		"acell":  []interface{}{10, 10, 10},
		"ecut":   10.0,
		"xcart":  []interface{}{[]interface{}{-0.7, 0.0, 0.0}, []float64{0.7, 0, 0}},
		"title":  "h2 molecule",
		"toldfe": 1e-6,
		"iscf":   -3,
		"prtwf":  false,
	}
	var b bytes.Buffer
	require.NoError(t, WriteInput(&b, params))

	expected := `# ABINIT input written by abilaunch
acell 10 10 10
ecut 10.0
iscf -3
prtwf 0
title "h2 molecule"
toldfe 1e-06
xcart
    -0.7 0.0 0.0
    0.7 0.0 0.0
`
	assert.Equal(t, expected, b.String())
}

func TestWriteInput_Errors(t *testing.T) {
	tests := map[string]interface{}{
		"empty list":     []interface{}{},
		"map":            map[string]int{"a": 1},
		"quote":          `a "quoted" title`,
		"ragged rows":    []interface{}{[]interface{}{1}, 2},
		"nil":            nil,
		"struct in list": []interface{}{struct{}{}},
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			err := WriteInput(&bytes.Buffer{}, parameters.Set{"x": value})
			assert.ErrorContains(t, err, "error writing variable x")
		})
	}
}

func TestParseInput(t *testing.T) {
	input := `
# tbase1_1
acell 10 10 10    ! in bohr
ntypat 1  znucl 1
natom 2 typat 2*1
xcart -0.7 0.0 0.0
       0.7 0.0 0.0
ecut 10.0
toldfe 1.0d-6
pp_dirpath "/home/me/pseudos"
`
	params, err := ParseInput(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, parameters.Set{
		"acell":      []interface{}{10, 10, 10},
		"ntypat":     1,
		"znucl":      1,
		"natom":      2,
		"typat":      []interface{}{1, 1},
		"xcart":      []interface{}{-0.7, 0.0, 0.0, 0.7, 0.0, 0.0},
		"ecut":       10.0,
		"toldfe":     1.0e-6,
		"pp_dirpath": "/home/me/pseudos",
	}, params)
}

func TestParseInput_Errors(t *testing.T) {
	tests := map[string]string{
		"no value":            "ecut\nntypat 1",
		"value without name":  "10 ecut 10",
		"defined twice":       "ecut 10\necut 12",
		"bad number":          "ecut 1..0",
		"bad repetition":      "typat x*1",
		"unterminated string": `title "abc`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseInput(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestReadInput_RoundTrip(t *testing.T) {
	params := parameters.Set{
		"acell":  []interface{}{10, 10, 10},
		"ecut":   10.0,
		"ntypat": 1,
		"title":  "h2",
		"xcart":  []interface{}{[]interface{}{-0.7, 0.0, 0.0}, []interface{}{0.7, 0.0, 0.0}},
	}
	path := filepath.Join(t.TempDir(), "h2.in")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteInput(f, params))
	require.NoError(t, f.Close())

	read, err := ReadInput(path)
	require.NoError(t, err)

	expected := params.Clone()
	expected["xcart"] = []interface{}{-0.7, 0.0, 0.0, 0.7, 0.0, 0.0}
	assert.Equal(t, expected, read)
}

func TestReadInput_MissingFile(t *testing.T) {
	_, err := ReadInput(filepath.Join(t.TempDir(), "missing.in"))
	assert.Error(t, err)
}
