package imagebuf

import (
	"fmt"
	"image"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/tmo"
)

var (
	Tonemappers = []string{"drago03", "durand", "icam06", "linear", "reinhard05"}
)

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

// Tonemap squashes an HDR image into a displayable one, using one of
// the global operators. The per-channel tone controls are separate;
// this is for writing out whole images.
func Tonemap(name string, img hdr.Image) (image.Image, error) {
	op, err := setupTonemapper(name, img)
	if err != nil {
		return nil, err
	}
	return op.Perform(), nil
}

func setupTonemapper(name string, img hdr.Image) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		op := tmo.NewDefaultDrago03(img)
		op.Bias = 1.0 // Otherwise bright areas blow out
		return op, nil
	case "durand":
		return tmo.NewDefaultDurand(img), nil
	case "icam06":
		return tmo.NewDefaultICam06(img), nil
	case "linear":
		return tmo.NewLinear(img), nil
	case "reinhard05":
		return tmo.NewDefaultReinhard05(img), nil
	default:
		return nil, fmt.Errorf("no tonemapper named '%s', try one of %s", name, ListTonemappers())
	}
}
