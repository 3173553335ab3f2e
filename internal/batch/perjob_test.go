package batch

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
)

func TestPerJob_Expand(t *testing.T) {
	tests := map[string]struct {
		setting   PerJob[int]
		expected  []int
		expectErr bool
	}{
		"unset":          {setting: PerJob[int]{}, expected: []int{0, 0, 0}},
		"shared":         {setting: Shared(4), expected: []int{4, 4, 4}},
		"one per job":    {setting: Each(1, 2, 3), expected: []int{1, 2, 3}},
		"too few":        {setting: Each(1, 2), expectErr: true},
		"too many":       {setting: Each(1, 2, 3, 4), expectErr: true},
		"single element": {setting: Each(1), expectErr: true},
		"empty list":     {setting: Each[int](), expectErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			expanded, err := tc.setting.Expand("ppn", 3)
			if tc.expectErr {
				var mismatch *launcherrors.ErrCardinalityMismatch
				require.True(t, errors.As(err, &mismatch))
				assert.Equal(t, "ppn", mismatch.Field)
				assert.Equal(t, 3, mismatch.Want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, expanded)
		})
	}
}

func TestPerJob_UnmarshalYAML(t *testing.T) {
	var spec struct {
		Shared  PerJob[interface{}] `json:"shared"`
		Each    PerJob[interface{}] `json:"each"`
		Empty   PerJob[interface{}] `json:"empty"`
		Nothing PerJob[interface{}] `json:"nothing"`
		Links   PerJob[StringList]  `json:"links"`
		OneLink PerJob[StringList]  `json:"oneLink"`
	}
	data := `
shared: 4
each: [1, "2:m48G", 3]
empty: []
nothing: null
links: [a_o_WFK, [b_o_WFK, b_o_DEN]]
oneLink: previous_o_DEN
`
	require.NoError(t, yaml.Unmarshal([]byte(data), &spec))

	assert.Equal(t, Shared[interface{}](4.0), spec.Shared)
	assert.Equal(t, Each[interface{}](1.0, "2:m48G", 3.0), spec.Each)
	assert.True(t, spec.Empty.IsSet())
	assert.False(t, spec.Nothing.IsSet())
	_, err := spec.Empty.Expand("empty", 3)
	var mismatch *launcherrors.ErrCardinalityMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 0, mismatch.Got)
	assert.Equal(t, Each(StringList{"a_o_WFK"}, StringList{"b_o_WFK", "b_o_DEN"}), spec.Links)
	assert.Equal(t, Shared(StringList{"previous_o_DEN"}), spec.OneLink)
}

func TestPerJob_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]PerJob[int]{"a": Shared(1), "b": Each(1, 2), "c": {}, "d": Each[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1, "b": [1, 2], "c": null, "d": []}`, string(data))
}

func TestStringList_Unmarshal(t *testing.T) {
	var single, list StringList
	require.NoError(t, json.Unmarshal([]byte(`"01h.pspgth"`), &single))
	require.NoError(t, json.Unmarshal([]byte(`["01h.pspgth", "08o.pspnc"]`), &list))
	assert.Equal(t, StringList{"01h.pspgth"}, single)
	assert.Equal(t, StringList{"01h.pspgth", "08o.pspnc"}, list)

	var bad StringList
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &bad))
}
