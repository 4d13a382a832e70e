package document

type Document struct {
	ID         string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string          `json:"name" yaml:"name"`
	Width      int             `json:"width" yaml:"width"`
	Height     int             `json:"height" yaml:"height"`
	Background string          `json:"background,omitempty" yaml:"background,omitempty"`
	Camera     *Camera         `json:"camera,omitempty" yaml:"camera,omitempty"`
	View2D     *View2D         `json:"view2d,omitempty" yaml:"view2d,omitempty"`
	Shade      string          `json:"shade,omitempty" yaml:"shade,omitempty"`
	Color      string          `json:"color,omitempty" yaml:"color,omitempty"`
	Animation  *Animation      `json:"animation,omitempty" yaml:"animation,omitempty"`
	Root       string          `json:"root" yaml:"root"`
	Modules    map[string][]Op `json:"modules" yaml:"modules"`
}

type Camera struct {
	VRP []float64 `json:"vrp" yaml:"vrp"`
	VPN []float64 `json:"vpn" yaml:"vpn"`
	VUP []float64 `json:"vup" yaml:"vup"`
	D   float64   `json:"d" yaml:"d"`
	DU  float64   `json:"du" yaml:"du"`
	DV  float64   `json:"dv" yaml:"dv"`
	F   float64   `json:"f,omitempty" yaml:"f,omitempty"`
	B   float64   `json:"b" yaml:"b"`
}

type View2D struct {
	VRP []float64 `json:"vrp" yaml:"vrp"`
	X   []float64 `json:"x" yaml:"x"`
	DX  float64   `json:"dx" yaml:"dx"`
}

type Animation struct {
	Frames int     `json:"frames" yaml:"frames"`
	FPS    int     `json:"fps,omitempty" yaml:"fps,omitempty"`
	Orbit  float64 `json:"orbit,omitempty" yaml:"orbit,omitempty"` // degrees about y over the whole sequence
}

type OpType string

const (
	OpPoint        OpType = "point"
	OpLine         OpType = "line"
	OpPolyline     OpType = "polyline"
	OpPolygon      OpType = "polygon"
	OpIdentity     OpType = "identity"
	OpMatrix       OpType = "matrix"
	OpTranslate    OpType = "translate"
	OpScale        OpType = "scale"
	OpRotateX      OpType = "rotateX"
	OpRotateY      OpType = "rotateY"
	OpRotateZ      OpType = "rotateZ"
	OpTranslate2D  OpType = "translate2D"
	OpScale2D      OpType = "scale2D"
	OpShear2D      OpType = "shear2D"
	OpShearZ       OpType = "shearZ"
	OpColor        OpType = "color"
	OpBodyColor    OpType = "bodyColor"
	OpSurfaceColor OpType = "surfaceColor"
	OpSurfaceCoeff OpType = "surfaceCoeff"
	OpModule       OpType = "module"
	OpCube         OpType = "cube"
	OpCylinder     OpType = "cylinder"
	OpCone         OpType = "cone"
	OpSphere       OpType = "sphere"
)

// Op is one entry of a module. Which fields are read depends on Op:
// numeric operands go in Args (angles in degrees), vertices in Points.
type Op struct {
	Op     OpType      `json:"op" yaml:"op"`
	Args   []float64   `json:"args,omitempty" yaml:"args,omitempty,flow"`
	Points [][]float64 `json:"points,omitempty" yaml:"points,omitempty,flow"`
	Color  string      `json:"color,omitempty" yaml:"color,omitempty"`
	Ref    string      `json:"ref,omitempty" yaml:"ref,omitempty"`
	Solid  bool        `json:"solid,omitempty" yaml:"solid,omitempty"`
}
