package dataset

import "fmt"

// CellType identifies the topology of an unstructured cell.
type CellType uint8

const (
	CellVertex     CellType = 1
	CellLine       CellType = 3
	CellTriangle   CellType = 5
	CellPolygon    CellType = 7
	CellQuad       CellType = 9
	CellTetra      CellType = 10
	CellHexahedron CellType = 12
	CellWedge      CellType = 13
	CellPyramid    CellType = 14
)

// String returns the cell type name.
func (t CellType) String() string {
	switch t {
	case CellVertex:
		return "Vertex"
	case CellLine:
		return "Line"
	case CellTriangle:
		return "Triangle"
	case CellPolygon:
		return "Polygon"
	case CellQuad:
		return "Quad"
	case CellTetra:
		return "Tetra"
	case CellHexahedron:
		return "Hexahedron"
	case CellWedge:
		return "Wedge"
	case CellPyramid:
		return "Pyramid"
	default:
		return fmt.Sprintf("CellType(%d)", uint8(t))
	}
}

// NumPoints returns the point count of fixed-size types, or 0 for
// variable-size ones (Polygon).
func (t CellType) NumPoints() int {
	switch t {
	case CellVertex:
		return 1
	case CellLine:
		return 2
	case CellTriangle:
		return 3
	case CellQuad, CellTetra:
		return 4
	case CellPyramid:
		return 5
	case CellWedge:
		return 6
	case CellHexahedron:
		return 8
	default:
		return 0
	}
}

// Point is a position in 3D space.
type Point [3]float64

// CellArray stores variable-length cells as offsets into a flat
// connectivity list. Cell i spans Connectivity[Offsets[i]:Offsets[i+1]].
type CellArray struct {
	Offsets      []int
	Connectivity []int
}

// Len returns the number of cells.
func (c *CellArray) Len() int {
	if len(c.Offsets) == 0 {
		return 0
	}

	return len(c.Offsets) - 1
}

// Cell returns the point ids of cell i. The slice aliases the array.
func (c *CellArray) Cell(i int) []int {
	return c.Connectivity[c.Offsets[i]:c.Offsets[i+1]]
}

// Append adds a cell.
func (c *CellArray) Append(pts ...int) {
	if len(c.Offsets) == 0 {
		c.Offsets = append(c.Offsets, 0)
	}
	c.Connectivity = append(c.Connectivity, pts...)
	c.Offsets = append(c.Offsets, len(c.Connectivity))
}

func (c *CellArray) reset() {
	c.Offsets = nil
	c.Connectivity = nil
}

func (c *CellArray) validate(numPoints int) error {
	if len(c.Offsets) == 0 {
		if len(c.Connectivity) != 0 {
			return fmt.Errorf("connectivity without offsets")
		}

		return nil
	}
	if c.Offsets[0] != 0 || c.Offsets[len(c.Offsets)-1] != len(c.Connectivity) {
		return fmt.Errorf("offsets do not span connectivity")
	}
	for i := 1; i < len(c.Offsets); i++ {
		if c.Offsets[i] < c.Offsets[i-1] {
			return fmt.Errorf("offsets decrease at cell %d", i-1)
		}
	}
	for _, p := range c.Connectivity {
		if p < 0 || p >= numPoints {
			return fmt.Errorf("point id %d outside %d points", p, numPoints)
		}
	}

	return nil
}
