package align

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/abworrall/align2d/pkg/emath"
	"github.com/abworrall/align2d/pkg/imagebuf"
)

type warpJob struct {
	// Inputs for the job
	Src *emath.FloatGrid
	Inv emath.Affine
	Row int

	// Output
	Vals []float64
}

// Warp resamples the moving image onto an h×w grid (the fixed image's
// extent). T maps moving coords to fixed coords, so each output pixel
// (x,y) reads the moving image at T⁻¹·(x,y), bilinearly. Pixels that
// land outside the moving image are 0.
func Warp(moving *imagebuf.Buffer, t emath.Affine, h, w int) (*imagebuf.Buffer, error) {
	inv, err := t.Inverse()
	if err != nil {
		return nil, fmt.Errorf("warp: %w", err)
	}

	out, err := imagebuf.New(h, w, moving.ChannelCount())
	if err != nil {
		return nil, fmt.Errorf("warp: %w", err)
	}

	for ch := 0; ch < moving.ChannelCount(); ch++ {
		src, _ := moving.Channel(ch)
		dst := emath.NewFloatGrid(w, h)
		warpRowsConcurrently(&src, inv, &dst)
		if err := out.SetChannel(ch, dst); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// warpRowsConcurrently uses a pool of goroutines to fill in each row of
// dst.
func warpRowsConcurrently(src *emath.FloatGrid, inv emath.Affine, dst *emath.FloatGrid) {
	var wg sync.WaitGroup
	jobsChan := make(chan warpJob, dst.Dy())
	resultsChan := make(chan warpJob, dst.Dy())

	// Kick off worker pool
	nWorkers := runtime.NumCPU()
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsChan {
				job.Vals = warpRow(job.Src, job.Inv, job.Row, dst.Dx())
				resultsChan <- job
			}
		}()
	}

	// Feed in jobs
	for y := 0; y < dst.Dy(); y++ {
		jobsChan <- warpJob{Src: src, Inv: inv, Row: y}
	}

	close(jobsChan)
	wg.Wait()
	close(resultsChan)

	for result := range resultsChan {
		for x, v := range result.Vals {
			dst.Set(x, result.Row, v)
		}
	}
}

func warpRow(src *emath.FloatGrid, inv emath.Affine, y, w int) []float64 {
	vals := make([]float64, w)
	for x := 0; x < w; x++ {
		p := inv.Apply(emath.Pt(float64(x), float64(y)))
		if v, ok := src.Bilinear(p.X, p.Y); ok {
			vals[x] = v
		}
	}
	return vals
}
