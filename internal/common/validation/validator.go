package validation

import "github.com/hashicorp/go-multierror"

type Validator[T any] interface {
	Validate(obj T) error
}

// ValidatorFunc adapts an ordinary function to the Validator interface.
type ValidatorFunc[T any] func(obj T) error

func (f ValidatorFunc[T]) Validate(obj T) error {
	return f(obj)
}

type CompoundValidator[T any] struct {
	validators []Validator[T]
}

func NewCompoundValidator[T any](validators ...Validator[T]) CompoundValidator[T] {
	return CompoundValidator[T]{
		validators: validators,
	}
}

// Validate returns the first error reported by the validators, in order.
func (c CompoundValidator[T]) Validate(obj T) error {
	for _, v := range c.validators {
		err := v.Validate(obj)
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidateAll runs every validator and returns all of their errors, in order, as a *multierror.Error.
// A validator may itself return a *multierror.Error; its errors are flattened into the result.
// Returns nil if every validator passed.
func (c CompoundValidator[T]) ValidateAll(obj T) error {
	var result *multierror.Error
	for _, v := range c.validators {
		if err := v.Validate(obj); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
