package align

import (
	"fmt"

	"github.com/abworrall/align2d/pkg/emath"
)

// Params are the knobs for building a transform by hand.
type Params struct {
	ScaleX      float64 `yaml:"scalex" json:"scale_x"`
	ScaleY      float64 `yaml:"scaley" json:"scale_y"`
	ShearX      float64 `yaml:"shearx" json:"shear_x"`
	ShearY      float64 `yaml:"sheary" json:"shear_y"`
	RotationDeg float64 `yaml:"rotationdeg" json:"rotation_deg"`
	TranslateX  float64 `yaml:"translatex" json:"translate_x"`
	TranslateY  float64 `yaml:"translatey" json:"translate_y"`
}

func DefaultParams() Params {
	return Params{ScaleX: 1, ScaleY: 1}
}

func (p Params) String() string {
	str := fmt.Sprintf("Params[scale(%.3f,%.3f)", p.ScaleX, p.ScaleY)
	if p.ShearX != 0 || p.ShearY != 0 {
		str += fmt.Sprintf(", shear(%.3f,%.3f)", p.ShearX, p.ShearY)
	}
	if p.RotationDeg != 0 {
		str += fmt.Sprintf(", %5.2fdeg", p.RotationDeg)
	}
	return str + fmt.Sprintf(", translate(%.2f,%.2f)]", p.TranslateX, p.TranslateY)
}

// Compose builds the transform: a point is sheared, then scaled, then
// rotated (about the origin), then translated. Changing the order
// changes the result.
func Compose(p Params) emath.Affine {
	m := emath.Shear(p.ShearX, p.ShearY)
	m = emath.Scale(p.ScaleX, p.ScaleY).Mult(m)
	m = emath.Rotation(p.RotationDeg).Mult(m)
	m = emath.Translation(p.TranslateX, p.TranslateY).Mult(m)
	return m
}
