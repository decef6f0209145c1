package dataset

import (
	"fmt"
	"slices"
)

// AttributeArray is a named array of tuples, each Components values wide.
type AttributeArray struct {
	Name       string
	Components int
	Values     []float64
}

// NewAttributeArray creates an empty array.
func NewAttributeArray(name string, components int) *AttributeArray {
	return &AttributeArray{Name: name, Components: components}
}

// NumTuples returns the number of tuples.
func (a *AttributeArray) NumTuples() int {
	if a.Components == 0 {
		return 0
	}

	return len(a.Values) / a.Components
}

// Tuple returns tuple i. The slice aliases the array.
func (a *AttributeArray) Tuple(i int) []float64 {
	return a.Values[i*a.Components : (i+1)*a.Components]
}

// AppendTuple appends one tuple; its width must equal Components.
func (a *AttributeArray) AppendTuple(t ...float64) {
	if len(t) != a.Components {
		panic(fmt.Sprintf("dataset: tuple of width %d appended to %q with %d components", len(t), a.Name, a.Components))
	}
	a.Values = append(a.Values, t...)
}

// Attributes is an ordered set of attribute arrays sharing one tuple count.
type Attributes struct {
	Arrays []*AttributeArray
}

// Add appends an array.
func (a *Attributes) Add(arr *AttributeArray) {
	a.Arrays = append(a.Arrays, arr)
}

// Get returns the array named name, or nil.
func (a *Attributes) Get(name string) *AttributeArray {
	for _, arr := range a.Arrays {
		if arr.Name == name {
			return arr
		}
	}

	return nil
}

// Len returns the number of arrays.
func (a *Attributes) Len() int {
	return len(a.Arrays)
}

// CloneSchema returns empty arrays with the same names and widths.
func (a *Attributes) CloneSchema() Attributes {
	out := Attributes{Arrays: make([]*AttributeArray, len(a.Arrays))}
	for i, arr := range a.Arrays {
		out.Arrays[i] = NewAttributeArray(arr.Name, arr.Components)
	}

	return out
}

// Clone returns a deep copy.
func (a *Attributes) Clone() Attributes {
	out := Attributes{Arrays: make([]*AttributeArray, len(a.Arrays))}
	for i, arr := range a.Arrays {
		out.Arrays[i] = &AttributeArray{Name: arr.Name, Components: arr.Components, Values: slices.Clone(arr.Values)}
	}

	return out
}

// SameSchema reports whether both sets have the same arrays in the same order.
func (a *Attributes) SameSchema(other *Attributes) bool {
	if len(a.Arrays) != len(other.Arrays) {
		return false
	}
	for i := range a.Arrays {
		if a.Arrays[i].Name != other.Arrays[i].Name || a.Arrays[i].Components != other.Arrays[i].Components {
			return false
		}
	}

	return true
}

// appendFrom appends tuple i of every array of src to the matching array of a.
// Both sets must share a schema.
func (a *Attributes) appendFrom(src *Attributes, i int) {
	for k, arr := range src.Arrays {
		a.Arrays[k].Values = append(a.Arrays[k].Values, arr.Tuple(i)...)
	}
}

func (a *Attributes) reset() {
	a.Arrays = nil
}

// validate checks every array holds exactly n tuples.
func (a *Attributes) validate(kind string, n int) error {
	for _, arr := range a.Arrays {
		if arr.Components < 1 {
			return fmt.Errorf("%s array %q has %d components", kind, arr.Name, arr.Components)
		}
		if len(arr.Values)%arr.Components != 0 {
			return fmt.Errorf("%s array %q holds a partial tuple", kind, arr.Name)
		}
		if arr.NumTuples() != n {
			return fmt.Errorf("%s array %q has %d tuples, want %d", kind, arr.Name, arr.NumTuples(), n)
		}
	}

	return nil
}
