package align

import (
	"errors"

	"github.com/abworrall/align2d/pkg/emath"
	"github.com/abworrall/align2d/pkg/imagebuf"
)

var ErrNotImplemented = errors.New("automatic alignment is not implemented")

// An AutoAligner works out a transform from the image content alone.
type AutoAligner interface {
	Align(fixed, moving *imagebuf.Buffer) (emath.Affine, error)
}

type NotImplementedAligner struct{}

func (NotImplementedAligner) Align(fixed, moving *imagebuf.Buffer) (emath.Affine, error) {
	return emath.Affine{}, ErrNotImplemented
}
