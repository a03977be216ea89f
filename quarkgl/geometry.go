package quarkgl

// BoxGeometry returns an axis-aligned cube of edge size centered on the origin.
func BoxGeometry(size Scalar) Geometry {
	h := size / 2
	verts := []Vertex{
		{Pos: V3(-h, -h, -h)}, {Pos: V3(h, -h, -h)}, {Pos: V3(h, h, -h)}, {Pos: V3(-h, h, -h)},
		{Pos: V3(-h, -h, h)}, {Pos: V3(h, -h, h)}, {Pos: V3(h, h, h)}, {Pos: V3(-h, h, h)},
	}
	// Counter-clockwise seen from outside.
	indices := []uint16{
		4, 5, 6, 4, 6, 7, // +z
		1, 0, 3, 1, 3, 2, // -z
		5, 1, 2, 5, 2, 6, // +x
		0, 4, 7, 0, 7, 3, // -x
		7, 6, 2, 7, 2, 3, // +y
		0, 1, 5, 0, 5, 4, // -y
	}
	return Geometry{
		Vertices: verts,
		Indices:  indices,
		Bounds:   Box(V3(-h, -h, -h), V3(h, h, h)),
	}
}

// GridGeometry returns a size×size line grid on the y=0 plane with the given number
// of divisions. The two center lines use center; the rest use grid.
//
// Its bounds are the flat square it covers, so a pickable grid acts as a ground
// surface for ray casts.
func GridGeometry(size Scalar, divisions int, center, grid Color) Geometry {
	if divisions < 1 {
		divisions = 1
	}
	half := size / 2
	step := size / Scalar(divisions)
	verts := make([]Vertex, 0, (divisions+1)*4)
	lines := make([]uint16, 0, (divisions+1)*4)
	for i := 0; i <= divisions; i++ {
		k := -half + Scalar(i)*step
		c := grid
		if i == divisions/2 && divisions%2 == 0 {
			c = center
		}
		base := uint16(len(verts))
		verts = append(verts,
			Vertex{Pos: V3(-half, 0, k), Color: c},
			Vertex{Pos: V3(half, 0, k), Color: c},
			Vertex{Pos: V3(k, 0, -half), Color: c},
			Vertex{Pos: V3(k, 0, half), Color: c},
		)
		lines = append(lines, base, base+1, base+2, base+3)
	}
	return Geometry{
		Vertices: verts,
		Lines:    lines,
		Bounds:   Box(V3(-half, 0, -half), V3(half, 0, half)),
	}
}

// AxesGeometry returns three lines from the origin along +X (red), +Y (green) and
// +Z (blue).
func AxesGeometry(length Scalar) Geometry {
	red := RGB(0xFF, 0x00, 0x00)
	green := RGB(0x00, 0xFF, 0x00)
	blue := RGB(0x00, 0x00, 0xFF)
	verts := []Vertex{
		{Pos: V3(0, 0, 0), Color: red}, {Pos: V3(length, 0, 0), Color: red},
		{Pos: V3(0, 0, 0), Color: green}, {Pos: V3(0, length, 0), Color: green},
		{Pos: V3(0, 0, 0), Color: blue}, {Pos: V3(0, 0, length), Color: blue},
	}
	return Geometry{
		Vertices: verts,
		Lines:    []uint16{0, 1, 2, 3, 4, 5},
		Bounds:   ComputeBounds(verts),
	}
}
