package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/align2d/pkg/imagebuf"
)

func TestLoadFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	b, _ := imagebuf.FromSamples([]int{3, 4}, make([]float64, 12))
	require.NoError(t, imagebuf.WritePNG(b.ToImage(), filepath.Join(dir, "a.png")))
	require.NoError(t, imagebuf.WritePNG(b.ToImage(), filepath.Join(dir, "b.png")))
	cfgFile := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("curvepoints: 20\n"), 0644))

	in, err := LoadFilesAndDirs(dir, cfgFile)
	require.NoError(t, err)
	assert.Equal(t, 4, in.Fixed.Width())
	assert.Equal(t, 3, in.Moving.Height())
	assert.Equal(t, 20, in.Config.CurvePoints)
	assert.Len(t, in.Metadata, 2)
	assert.Equal(t, filepath.Join(dir, "a.png"), in.Metadata[0].Filename)
}

func TestLoadNeedsTwoImages(t *testing.T) {
	dir := t.TempDir()
	b, _ := imagebuf.FromSamples([]int{3, 4}, make([]float64, 12))
	require.NoError(t, imagebuf.WritePNG(b.ToImage(), filepath.Join(dir, "a.png")))

	_, err := LoadFilesAndDirs(dir)
	assert.Error(t, err)

	_, err = LoadFilesAndDirs(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
