package types

// Shape identifies the topology family of a dataset.
type Shape int

const (
	// ShapeUnknown is the zero value and is never supported by a copier.
	ShapeUnknown Shape = iota

	// ShapePolyData is a cell-array topology: each cell is a list of point ids.
	ShapePolyData

	// ShapeUnstructuredGrid is a mixed topology: a cell array plus a cell type per cell.
	ShapeUnstructuredGrid
)

// String returns the string representation of the shape.
func (s Shape) String() string {
	switch s {
	case ShapePolyData:
		return "PolyData"
	case ShapeUnstructuredGrid:
		return "UnstructuredGrid"
	default:
		return "Unknown"
	}
}

// Dataset is the part of a dataset the sampling core depends on.
//
// The source dataset is read-only for the whole pass. The output dataset is
// append-only and owned by a single rank.
type Dataset interface {
	// NumberOfCells returns the local cell count; local ids are [0, NumberOfCells()).
	NumberOfCells() int

	// Shape returns the topology family of the dataset.
	Shape() Shape

	// Reset drops all points, cells and attribute arrays.
	Reset()
}

// CellCopier appends individual cells of a source dataset to an output dataset.
//
// One implementation exists per supported Shape. Adding a shape means adding
// a CellCopier, not changing the sampling core.
type CellCopier interface {
	// Initialize binds the copier to a source/output pair and prepares the
	// output attribute arrays to mirror the source schema (same names, same
	// tuple widths).
	//
	// Returns:
	//   - error: ErrShapeMismatch if output does not match the source shape
	Initialize(source, output Dataset) error

	// Copy appends the cell at localID with its points and attribute tuples.
	// Point references are re-indexed; output ids are sequential.
	Copy(localID uint64) error
}

// CopierFactory creates the CellCopier for a source dataset.
//
// Returns ErrUnsupportedShape when the shape has no copier.
type CopierFactory func(source Dataset) (CellCopier, error)
