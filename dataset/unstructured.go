package dataset

import (
	"fmt"

	"github.com/arloliu/randcells/types"
)

// UnstructuredGrid is a mesh of cells of mixed types.
type UnstructuredGrid struct {
	Points    []Point
	Cells     CellArray
	Types     []CellType
	PointData Attributes
	CellData  Attributes
}

var _ types.Dataset = (*UnstructuredGrid)(nil)

// NewUnstructuredGrid returns an empty UnstructuredGrid.
func NewUnstructuredGrid() *UnstructuredGrid {
	return &UnstructuredGrid{}
}

// AppendCell adds a cell of type t.
func (g *UnstructuredGrid) AppendCell(t CellType, pts ...int) {
	g.Cells.Append(pts...)
	g.Types = append(g.Types, t)
}

// NumberOfCells returns the number of cells.
func (g *UnstructuredGrid) NumberOfCells() int {
	return g.Cells.Len()
}

// NumberOfPoints returns the number of points.
func (g *UnstructuredGrid) NumberOfPoints() int {
	return len(g.Points)
}

// Shape returns types.ShapeUnstructuredGrid.
func (g *UnstructuredGrid) Shape() types.Shape {
	return types.ShapeUnstructuredGrid
}

// Reset empties the grid, attribute schemas included.
func (g *UnstructuredGrid) Reset() {
	g.Points = nil
	g.Cells.reset()
	g.Types = nil
	g.PointData.reset()
	g.CellData.reset()
}

// Validate checks connectivity, cell types and attribute tuple counts.
func (g *UnstructuredGrid) Validate() error {
	if err := g.Cells.validate(len(g.Points)); err != nil {
		return fmt.Errorf("unstructured grid cells: %w", err)
	}
	if len(g.Types) != g.Cells.Len() {
		return fmt.Errorf("unstructured grid has %d cell types for %d cells", len(g.Types), g.Cells.Len())
	}
	for i, t := range g.Types {
		if n := t.NumPoints(); n > 0 && n != len(g.Cells.Cell(i)) {
			return fmt.Errorf("cell %d of type %s has %d points, want %d", i, t, len(g.Cells.Cell(i)), n)
		}
	}
	if err := g.PointData.validate("point", len(g.Points)); err != nil {
		return err
	}

	return g.CellData.validate("cell", g.Cells.Len())
}
