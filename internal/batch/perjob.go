package batch

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
)

// PerJob is a setting given either once for the whole batch or once per job.
// In JSON (and YAML) an array is read as one value per job and anything else as a shared value;
// only null leaves the setting unset. An empty array is a per-job list of length zero.
type PerJob[T any] struct {
	values []T
	list   bool
}

// Shared returns a setting with value for every job.
func Shared[T any](value T) PerJob[T] {
	return PerJob[T]{values: []T{value}}
}

// Each returns a setting with one value per job.
func Each[T any](values ...T) PerJob[T] {
	return PerJob[T]{values: values, list: true}
}

func (p PerJob[T]) IsSet() bool {
	return p.list || len(p.values) > 0
}

// Expand returns the value for each of n jobs. An unset setting yields zero values.
func (p PerJob[T]) Expand(field string, n int) ([]T, error) {
	expanded := make([]T, n)
	if !p.IsSet() {
		return expanded, nil
	}
	if !p.list {
		for i := range expanded {
			expanded[i] = p.values[0]
		}
		return expanded, nil
	}
	if len(p.values) != n {
		return nil, errors.WithStack(&launcherrors.ErrCardinalityMismatch{Field: field, Got: len(p.values), Want: n})
	}
	copy(expanded, p.values)
	return expanded, nil
}

func (p *PerJob[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = PerJob[T]{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var values []T
		if err := json.Unmarshal(trimmed, &values); err == nil {
			*p = Each(values...)
			return nil
		}
	}
	var value T
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return errors.WithStack(err)
	}
	*p = Shared(value)
	return nil
}

func (p PerJob[T]) MarshalJSON() ([]byte, error) {
	switch {
	case !p.IsSet():
		return []byte("null"), nil
	case p.list:
		if p.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(p.values)
	default:
		return json.Marshal(p.values[0])
	}
}

// StringList is a list of strings that may be written as a single string.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.Wrap(err, "expected a string or a list of strings")
	}
	*s = list
	return nil
}
