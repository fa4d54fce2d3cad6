package device

import "fmt"

// PropertyOptions declares a property. Nil fields take their defaults:
// Retrievable true, Reportable false.
type PropertyOptions struct {
	Retrievable *bool
	Reportable  *bool
	Parameters  *Parameters

	OnQuery QueryFunc
}

// NewProperty builds a property of the given type
func NewProperty(t PropertyType, opts PropertyOptions) (*Property, error) {
	switch t {
	case PropertyFloat:
		return NewFloat(opts)
	case PropertyBool:
		return NewBool(opts)
	default:
		return nil, fmt.Errorf("%w: unknown property type %q", ErrSchema, t)
	}
}

// NewFloat builds a float property
func NewFloat(opts PropertyOptions) (*Property, error) {
	return newProperty(PropertyFloat, "Float", opts)
}

// NewBool builds a bool property
func NewBool(opts PropertyOptions) (*Property, error) {
	return newProperty(PropertyBool, "Bool", opts)
}

func newProperty(t PropertyType, name string, opts PropertyOptions) (*Property, error) {
	if opts.Parameters == nil {
		return nil, fmt.Errorf("%w: %s property: 'parameters' is missing", ErrSchema, name)
	}
	if opts.Parameters.Instance == "" {
		return nil, fmt.Errorf("%w: %s property: 'parameters' must have 'instance'", ErrSchema, name)
	}

	return &Property{
		Type:        t,
		Retrievable: boolOr(opts.Retrievable, true),
		Reportable:  boolOr(opts.Reportable, false),
		Parameters:  *opts.Parameters,
		OnQuery:     opts.OnQuery,
	}, nil
}
