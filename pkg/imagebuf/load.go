package imagebuf

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"
)

// Metadata is whatever the image file could tell us about itself.
type Metadata struct {
	Filename string
	Format   string
	Model    string    // camera model, from EXIF
	Taken    time.Time // from EXIF
	HasExif  bool
}

func (md Metadata) String() string {
	if !md.HasExif {
		return fmt.Sprintf("%s (%s, no exif)", md.Filename, md.Format)
	}
	return fmt.Sprintf("%s (%s, %q, %s)", md.Filename, md.Format, md.Model, md.Taken.Format(time.RFC3339))
}

// Load reads a TIFF, PNG or JPEG file into a buffer. EXIF data is
// optional; files without it still load.
func Load(filename string) (*Buffer, Metadata, error) {
	md := Metadata{Filename: filename}
	loadExif(&md)

	reader, err := os.Open(filename)
	if err != nil {
		return nil, md, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		md.Format = "tiff"
		if img, err = tiff.Decode(reader); err != nil {
			return nil, md, fmt.Errorf("tiff loading '%s': %v", filename, err)
		}
	default:
		if img, md.Format, err = image.Decode(reader); err != nil {
			return nil, md, fmt.Errorf("image loading '%s': %v", filename, err)
		}
	}

	b := FromImage(img)
	if b == nil {
		return nil, md, fmt.Errorf("image '%s' is %s: %w", filename, img.Bounds(), ErrInvalidImageShape)
	}
	return b, md, nil
}

func loadExif(md *Metadata) {
	reader, err := os.Open(md.Filename)
	if err != nil {
		return
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return
	}
	md.HasExif = true

	if tag, err := ex.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			md.Model = strings.TrimSpace(s)
		}
	}
	if t, err := ex.DateTime(); err == nil {
		md.Taken = t
	}
}
