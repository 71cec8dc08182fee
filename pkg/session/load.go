package session

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/abworrall/align2d/pkg/imagebuf"
)

// Inputs are what the tools gather from the command line: the first
// image found is the fixed one, the second the moving one.
type Inputs struct {
	Fixed, Moving *imagebuf.Buffer
	Metadata      []imagebuf.Metadata
	Config        Config
}

func LoadFilesAndDirs(args ...string) (Inputs, error) {
	in := Inputs{Config: NewConfig()}
	if err := in.load(args...); err != nil {
		return in, err
	}
	if in.Moving == nil {
		return in, fmt.Errorf("need a fixed and a moving image, found %d", len(in.Metadata))
	}
	return in, nil
}

func (in *Inputs) load(args ...string) error {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := in.load(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %v", arg, err)
				}
			}

		default: // is a file, load it
			if err := in.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %v", arg, err)
			}
		}
	}

	return nil
}

func (in *Inputs) loadFile(filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {

	case ".tif", ".tiff", ".png", ".jpg", ".jpeg":
		if in.Moving != nil {
			return fmt.Errorf("already have two images, one pair at a time")
		}
		buf, md, err := imagebuf.Load(filename)
		if err != nil {
			return err
		}
		in.Metadata = append(in.Metadata, md)
		if in.Fixed == nil {
			in.Fixed = buf
		} else {
			in.Moving = buf
		}
		log.Printf("Loaded %s %s\n", md, buf)

	case ".yaml":
		cfg, err := LoadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %v", filename, err)
		}
		in.Config = cfg
		log.Printf("Loaded base configuration from %s\n", filename)
	}

	return nil
}
