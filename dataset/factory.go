package dataset

import (
	"fmt"

	"github.com/arloliu/randcells/types"
)

// NewCopier returns the copier for the shape of source.
//
// Returns:
//   - types.CellCopier: Uninitialized copier
//   - error: Wraps types.ErrUnsupportedShape for any other dataset
func NewCopier(source types.Dataset) (types.CellCopier, error) {
	if source == nil {
		return nil, types.ErrSourceRequired
	}

	switch source.(type) {
	case *PolyData:
		return &PolyDataCopier{}, nil
	case *UnstructuredGrid:
		return &UnstructuredGridCopier{}, nil
	default:
		return nil, fmt.Errorf("%w: %T (%s)", types.ErrUnsupportedShape, source, source.Shape())
	}
}

// NewLike returns an empty dataset of the same shape as source, or nil when
// the shape is not one of this package's.
func NewLike(source types.Dataset) types.Dataset {
	switch source.(type) {
	case *PolyData:
		return NewPolyData()
	case *UnstructuredGrid:
		return NewUnstructuredGrid()
	default:
		return nil
	}
}

var _ types.CopierFactory = NewCopier
