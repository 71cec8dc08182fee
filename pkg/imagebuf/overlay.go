package imagebuf

import (
	"fmt"

	"github.com/abworrall/align2d/pkg/emath"
)

// Overlay builds the three channel comparison image: channel 0 from the
// fixed image, channel 1 from the warped moving image, channel 2 all
// zeros. Only channel 0 of each input is used.
func Overlay(fixed, warped *Buffer) (*Buffer, error) {
	if !fixed.SameExtent(warped) {
		return nil, fmt.Errorf("overlay %s onto %s: %w", warped, fixed, ErrExtentMismatch)
	}

	return FromGrids(
		fixed.planes[0],
		warped.planes[0],
		emath.NewFloatGrid(fixed.w, fixed.h),
	)
}
