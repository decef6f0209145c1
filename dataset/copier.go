package dataset

import (
	"fmt"

	"github.com/arloliu/randcells/types"
)

// pointMapper appends source points to an output on first use and remembers
// where each one went.
type pointMapper struct {
	ids map[int]int
}

func (m *pointMapper) reset() {
	m.ids = make(map[int]int)
}

// mapCell returns the output ids of the source points pts, appending
// points not yet copied through add.
func (m *pointMapper) mapCell(pts []int, add func(src int) int) []int {
	out := make([]int, len(pts))
	for i, p := range pts {
		id, ok := m.ids[p]
		if !ok {
			id = add(p)
			m.ids[p] = id
		}
		out[i] = id
	}

	return out
}

func checkBind(source, output types.Dataset) error {
	if source == nil {
		return types.ErrSourceRequired
	}
	if output == nil {
		return types.ErrOutputRequired
	}

	return nil
}

func checkCell(localID uint64, n int) (int, error) {
	if localID >= uint64(n) {
		return 0, fmt.Errorf("cell %d out of range: source has %d cells", localID, n)
	}

	return int(localID), nil
}

// PolyDataCopier copies cells between PolyData datasets.
type PolyDataCopier struct {
	source *PolyData
	output *PolyData
	points pointMapper
}

var _ types.CellCopier = (*PolyDataCopier)(nil)

// Initialize validates the source and binds it to output. The output is
// emptied and given the source's attribute schema.
func (c *PolyDataCopier) Initialize(source, output types.Dataset) error {
	if err := checkBind(source, output); err != nil {
		return err
	}
	src, ok := source.(*PolyData)
	if !ok {
		return fmt.Errorf("%w: poly data copier cannot read %s", types.ErrUnsupportedShape, source.Shape())
	}
	if err := src.Validate(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrMalformedSource, err)
	}
	out, ok := output.(*PolyData)
	if !ok {
		return fmt.Errorf("%w: source is %s, output is %s", types.ErrShapeMismatch, source.Shape(), output.Shape())
	}

	out.Reset()
	out.PointData = src.PointData.CloneSchema()
	out.CellData = src.CellData.CloneSchema()

	c.source = src
	c.output = out
	c.points.reset()

	return nil
}

// Copy appends source cell localID, its not-yet-copied points and its
// point and cell attributes to the output.
func (c *PolyDataCopier) Copy(localID uint64) error {
	if c.source == nil {
		return fmt.Errorf("copier not initialized")
	}
	cell, err := checkCell(localID, c.source.NumberOfCells())
	if err != nil {
		return err
	}

	pts := c.points.mapCell(c.source.Cells.Cell(cell), func(src int) int {
		c.output.Points = append(c.output.Points, c.source.Points[src])
		c.output.PointData.appendFrom(&c.source.PointData, src)

		return len(c.output.Points) - 1
	})

	c.output.Cells.Append(pts...)
	c.output.CellData.appendFrom(&c.source.CellData, cell)

	return nil
}

// UnstructuredGridCopier copies cells between UnstructuredGrid datasets.
type UnstructuredGridCopier struct {
	source *UnstructuredGrid
	output *UnstructuredGrid
	points pointMapper
}

var _ types.CellCopier = (*UnstructuredGridCopier)(nil)

// Initialize validates the source and binds it to output. The output is
// emptied and given the source's attribute schema.
func (c *UnstructuredGridCopier) Initialize(source, output types.Dataset) error {
	if err := checkBind(source, output); err != nil {
		return err
	}
	src, ok := source.(*UnstructuredGrid)
	if !ok {
		return fmt.Errorf("%w: unstructured grid copier cannot read %s", types.ErrUnsupportedShape, source.Shape())
	}
	if err := src.Validate(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrMalformedSource, err)
	}
	out, ok := output.(*UnstructuredGrid)
	if !ok {
		return fmt.Errorf("%w: source is %s, output is %s", types.ErrShapeMismatch, source.Shape(), output.Shape())
	}

	out.Reset()
	out.PointData = src.PointData.CloneSchema()
	out.CellData = src.CellData.CloneSchema()

	c.source = src
	c.output = out
	c.points.reset()

	return nil
}

// Copy appends source cell localID with its type, its not-yet-copied
// points and its point and cell attributes to the output.
func (c *UnstructuredGridCopier) Copy(localID uint64) error {
	if c.source == nil {
		return fmt.Errorf("copier not initialized")
	}
	cell, err := checkCell(localID, c.source.NumberOfCells())
	if err != nil {
		return err
	}

	pts := c.points.mapCell(c.source.Cells.Cell(cell), func(src int) int {
		c.output.Points = append(c.output.Points, c.source.Points[src])
		c.output.PointData.appendFrom(&c.source.PointData, src)

		return len(c.output.Points) - 1
	})

	c.output.AppendCell(c.source.Types[cell], pts...)
	c.output.CellData.appendFrom(&c.source.CellData, cell)

	return nil
}
