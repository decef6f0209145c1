package dataset

// Attribute names written by the generators.
const (
	AttrCellID   = "cellId"
	AttrPressure = "pressure"
	AttrPointID  = "pointId"
	AttrVelocity = "velocity"
)

// gridPoints lays out (nx+1)*(ny+1) points on the unit-spaced z=0 plane
// with their point attributes.
func gridPoints(nx, ny int) ([]Point, Attributes) {
	pointID := NewAttributeArray(AttrPointID, 1)
	velocity := NewAttributeArray(AttrVelocity, 3)

	pts := make([]Point, 0, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			x, y := float64(i), float64(j)
			pointID.AppendTuple(float64(len(pts)))
			velocity.AppendTuple(x, y, x+y)
			pts = append(pts, Point{x, y, 0})
		}
	}

	return pts, Attributes{Arrays: []*AttributeArray{pointID, velocity}}
}

func cellAttributes() (Attributes, *AttributeArray, *AttributeArray) {
	cellID := NewAttributeArray(AttrCellID, 1)
	pressure := NewAttributeArray(AttrPressure, 1)

	return Attributes{Arrays: []*AttributeArray{cellID, pressure}}, cellID, pressure
}

// corners returns the point ids of square (i, j) counter-clockwise.
func corners(nx, i, j int) (int, int, int, int) {
	row := nx + 1
	p0 := j*row + i

	return p0, p0 + 1, p0 + 1 + row, p0 + row
}

// NewQuadGrid builds an nx by ny grid of quads.
//
// Cells are numbered row by row; the "cellId" attribute of cell k holds
// firstID+k, so cells sampled from several grids can be traced back to a
// global id. "pressure" holds half the cell id.
func NewQuadGrid(nx, ny, firstID int) *PolyData {
	pts, pd := gridPoints(nx, ny)
	cd, cellID, pressure := cellAttributes()

	d := &PolyData{Points: pts, PointData: pd, CellData: cd}
	for j := range ny {
		for i := range nx {
			a, b, c, e := corners(nx, i, j)
			id := float64(firstID + d.Cells.Len())
			d.Cells.Append(a, b, c, e)
			cellID.AppendTuple(id)
			pressure.AppendTuple(id / 2)
		}
	}

	return d
}

// NewMixedGrid builds an nx by ny grid whose squares alternate between one
// quad and two triangles in a checkerboard pattern.
//
// Cell ids run in creation order starting at firstID, as for NewQuadGrid.
// The grid holds nx*ny + floor(nx*ny/2) cells.
func NewMixedGrid(nx, ny, firstID int) *UnstructuredGrid {
	pts, pd := gridPoints(nx, ny)
	cd, cellID, pressure := cellAttributes()

	g := &UnstructuredGrid{Points: pts, PointData: pd, CellData: cd}
	add := func(t CellType, p ...int) {
		id := float64(firstID + g.Cells.Len())
		g.AppendCell(t, p...)
		cellID.AppendTuple(id)
		pressure.AppendTuple(id / 2)
	}

	for j := range ny {
		for i := range nx {
			a, b, c, e := corners(nx, i, j)
			if (i+j)%2 == 0 {
				add(CellQuad, a, b, c, e)
			} else {
				add(CellTriangle, a, b, c)
				add(CellTriangle, a, c, e)
			}
		}
	}

	return g
}
