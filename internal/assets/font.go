package assets

import (
	"os"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// LoadFont parses the branded display font at path. Asset problems never
// fail a render: on any error (or an empty path) the embedded Go Bold face
// is returned instead.
func LoadFont(path string) *sfnt.Font {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if fnt, err := opentype.Parse(data); err == nil {
				return fnt
			}
		}
	}
	fnt, err := opentype.Parse(gobold.TTF)
	if err != nil {
		// gobold ships with x/image and always parses
		panic(err)
	}
	return fnt
}
