package document

import (
	"fmt"
)

// Samples maps sample names to their constructors.
var Samples = map[string]func() *Document{
	"cube": NewCubeDocument,
	"ship": NewSpaceshipDocument,
}

// NewCubeDocument returns a blue wireframe cube seen from above one corner,
// orbiting once over 36 frames.
func NewCubeDocument() *Document {
	return &Document{
		Name:       "cube",
		Width:      600,
		Height:     600,
		Background: "#000000",
		Camera: &Camera{
			VRP: []float64{2, 2.5, 2},
			VPN: []float64{-2, -2.5, -0.5},
			VUP: []float64{0, 0, 1},
			D:   0.5,
			DU:  2,
			DV:  2,
			B:   10,
		},
		Color:     "#0000ff",
		Animation: &Animation{Frames: 36, FPS: 12, Orbit: 360},
		Root:      "cube",
		Modules: map[string][]Op{
			"cube": {
				{Op: OpCube},
			},
		},
	}
}

// NewSpaceshipDocument returns ten formations of three spaceships each,
// drawn as outlines.
func NewSpaceshipDocument() *Document {
	modules := map[string][]Op{
		"body": {
			{Op: OpColor, Color: "#bfbfbf"},
			{Op: OpScale, Args: []float64{1, 3, 1}},
			{Op: OpCylinder, Args: []float64{20}},
		},
		"engine": {
			{Op: OpColor, Color: "#4d4d4d"},
			{Op: OpScale, Args: []float64{0.7, 1.8, 0.7}},
			{Op: OpTranslate, Args: []float64{0, -2, 0}},
			{Op: OpCylinder, Args: []float64{20}},
		},
		"cockpit": {
			{Op: OpColor, Color: "#80cce6"},
			{Op: OpScale, Args: []float64{0.8, 0.8, 0.8}},
			{Op: OpTranslate, Args: []float64{0, 1.5, 0}},
			{Op: OpSphere, Args: []float64{20, 20, 1}},
		},
		"thruster": {
			{Op: OpColor, Color: "#e61a1a"},
			{Op: OpScale, Args: []float64{0.7, 1.5, 0.7}},
			{Op: OpTranslate, Args: []float64{0, -4.7, 0}},
			{Op: OpCone, Args: []float64{20, 1.5, 0.7}},
		},
		"ship": {
			{Op: OpModule, Ref: "body"},
			{Op: OpModule, Ref: "engine"},
			{Op: OpModule, Ref: "cockpit"},
			{Op: OpModule, Ref: "thruster"},
		},
	}

	var root []Op
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("formation%d", i)
		tx := float64(3 - (i%3)*2)
		ty := float64(i%3 - 1)
		tz := float64((i%2)*5 - 5)
		angle := float64(i * 10)

		var formation []Op
		for j := 0; j < 3; j++ {
			formation = append(formation,
				Op{Op: OpRotateX, Args: []float64{angle}},
				Op{Op: OpTranslate, Args: []float64{tx * float64(j), ty * float64(j), tz * float64(j+1)}},
				Op{Op: OpModule, Ref: "ship"},
			)
		}
		modules[name] = formation

		root = append(root,
			Op{Op: OpIdentity},
			Op{Op: OpTranslate, Args: []float64{float64(i*10 - 30), ty, tz}},
			Op{Op: OpModule, Ref: name},
		)
	}
	modules["scene"] = root

	return &Document{
		Name:       "spaceships",
		Width:      640,
		Height:     360,
		Background: "#000000",
		Camera: &Camera{
			VRP: []float64{10, 10, 40},
			VPN: []float64{0, 0, -1},
			VUP: []float64{0, 1, 0},
			D:   10,
			DU:  20,
			DV:  15,
			F:   1,
			B:   100,
		},
		Shade:     "frame",
		Animation: &Animation{Frames: 24, FPS: 12, Orbit: 30},
		Root:      "scene",
		Modules:   modules,
	}
}
