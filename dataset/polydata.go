package dataset

import (
	"fmt"

	"github.com/arloliu/randcells/types"
)

// PolyData is a surface mesh: points and polygonal cells.
type PolyData struct {
	Points    []Point
	Cells     CellArray
	PointData Attributes
	CellData  Attributes
}

var _ types.Dataset = (*PolyData)(nil)

// NewPolyData returns an empty PolyData.
func NewPolyData() *PolyData {
	return &PolyData{}
}

// NumberOfCells returns the number of cells.
func (d *PolyData) NumberOfCells() int {
	return d.Cells.Len()
}

// NumberOfPoints returns the number of points.
func (d *PolyData) NumberOfPoints() int {
	return len(d.Points)
}

// Shape returns types.ShapePolyData.
func (d *PolyData) Shape() types.Shape {
	return types.ShapePolyData
}

// Reset empties the dataset, attribute schemas included.
func (d *PolyData) Reset() {
	d.Points = nil
	d.Cells.reset()
	d.PointData.reset()
	d.CellData.reset()
}

// Validate checks connectivity and attribute tuple counts.
func (d *PolyData) Validate() error {
	if err := d.Cells.validate(len(d.Points)); err != nil {
		return fmt.Errorf("poly data cells: %w", err)
	}
	if err := d.PointData.validate("point", len(d.Points)); err != nil {
		return err
	}

	return d.CellData.validate("cell", d.Cells.Len())
}
