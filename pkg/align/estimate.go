package align

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/align2d/pkg/controlpoints"
	"github.com/abworrall/align2d/pkg/emath"
)

var (
	ErrInsufficientCorrespondences = errors.New("need at least 3 point pairs")
	ErrDegenerateCorrespondences   = errors.New("point pairs do not pin down an affine transform")

	ErrMismatchedCorrespondenceCount = controlpoints.ErrMismatchedCorrespondenceCount
)

// DefaultMaxCondition is the largest ratio of singular values we accept
// before calling the points degenerate (collinear, nearly collinear, or
// repeated). Source points are normalised first, so the ratio does not
// depend on where in the image they are or how far apart.
const DefaultMaxCondition = 1e6

// An Estimator fits affine transforms to point pairs.
type Estimator struct {
	MaxCondition float64
}

func NewEstimator() Estimator { return Estimator{MaxCondition: DefaultMaxCondition} }

// Estimate fits the transform T that best maps src[i] onto dst[i], in
// the least squares sense, using the default estimator.
func Estimate(src, dst []emath.Point) (emath.Affine, error) {
	return NewEstimator().Estimate(src, dst)
}

// normalizer moves the centroid of pts to the origin and scales them so
// the mean distance from it is √2.
func normalizer(pts []emath.Point) (emath.Affine, bool) {
	c := emath.Point{}
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Div(float64(len(pts)))

	d := 0.0
	for _, p := range pts {
		d += p.Distance(c)
	}
	d /= float64(len(pts))
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return emath.Affine{}, false
	}

	k := math.Sqrt2 / d
	return emath.Scale(k, k).Mult(emath.Translation(-c.X, -c.Y)), true
}

// Estimate solves A·X ≈ B, where the rows of A are (x,y,1) from the
// normalised src and the rows of B are (x,y,1) from dst, and returns
// T = Xᵗ·N. With exactly three non-collinear pairs the fit is exact.
func (est Estimator) Estimate(src, dst []emath.Point) (emath.Affine, error) {
	if len(src) != len(dst) {
		return emath.Affine{}, fmt.Errorf("estimate %d->%d points: %w", len(src), len(dst), ErrMismatchedCorrespondenceCount)
	} else if len(src) < 3 {
		return emath.Affine{}, fmt.Errorf("estimate with %d points: %w", len(src), ErrInsufficientCorrespondences)
	}

	norm, ok := normalizer(src)
	if !ok {
		return emath.Affine{}, fmt.Errorf("estimate, source points have no spread: %w", ErrDegenerateCorrespondences)
	}

	n := len(src)
	a := mat.NewDense(n, 3, nil)
	b := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		p := norm.Apply(src[i])
		a.SetRow(i, []float64{p.X, p.Y, 1})
		b.SetRow(i, []float64{dst[i].X, dst[i].Y, 1})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return emath.Affine{}, fmt.Errorf("estimate, SVD failed to factorize: %w", ErrDegenerateCorrespondences)
	}

	maxCond := est.MaxCondition
	if maxCond <= 0 {
		maxCond = DefaultMaxCondition
	}

	// Singular values come out in descending order
	s := svd.Values(nil)
	if s[0] == 0 || s[2] == 0 || s[0]/s[2] > maxCond || math.IsNaN(s[0]/s[2]) {
		return emath.Affine{}, fmt.Errorf("estimate, singular values %v: %w", s, ErrDegenerateCorrespondences)
	}

	// X = V · diag(1/s) · Uᵗ · B
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var utb mat.Dense
	utb.Mul(u.T(), b)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			utb.Set(i, j, utb.At(i, j)/s[i])
		}
	}

	var x mat.Dense
	x.Mul(&v, &utb)

	var tn emath.Affine
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tn[3*i+j] = x.At(j, i)
		}
	}
	return tn.Mult(norm), nil
}

// Residual is the RMS distance between T(src[i]) and dst[i].
func Residual(t emath.Affine, src, dst []emath.Point) float64 {
	if len(src) == 0 || len(src) != len(dst) {
		return 0
	}
	sum := 0.0
	for i := range src {
		d := t.Apply(src[i]).Distance(dst[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(src)))
}
