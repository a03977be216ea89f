package app

import "pointview/quarkgl"

const (
	gridSize      = 100
	gridDivisions = 100
	axesLength    = 5
)

// addFurniture adds the reference grid and the axes. The grid is pickable so a
// dragged point can follow the pointer across it.
func addFurniture(s *quarkgl.Scene) {
	s.AddMesh(quarkgl.Mesh{
		Pickable: true,
		Geometry: quarkgl.GridGeometry(gridSize, gridDivisions, quarkgl.Hex(0x00FF00), quarkgl.Hex(0xFFFFFF)),
		Material: quarkgl.Material{BaseColor: quarkgl.Hex(0xFFFFFF), Unlit: true},
	})
	s.AddMesh(quarkgl.Mesh{
		Geometry: quarkgl.AxesGeometry(axesLength),
		Material: quarkgl.Material{BaseColor: quarkgl.Hex(0xFFFFFF), Unlit: true},
	})
}
