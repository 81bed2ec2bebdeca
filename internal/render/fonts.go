package render

import (
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontPaths are tried in order before falling back to the embedded Go font.
var fontPaths = []string{
	"C:\\Windows\\Fonts\\arial.ttf",
	"C:\\Windows\\Fonts\\segoeui.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
}

// findFont returns the first readable system font, or "" if none exists.
func findFont() string {
	for _, p := range fontPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	matches, _ := filepath.Glob("*.ttf")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// loadFace parses the font at path (or the embedded Go Regular when path is
// empty or unusable) and returns a face of the given size.
func loadFace(path string, size float64) (font.Face, string, error) {
	data := goregular.TTF
	source := "embedded Go Regular"

	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			data, source = b, path
		} else {
			log.Printf("⚠️ Failed to read font file: %v", err)
		}
	}

	parsed, err := opentype.Parse(data)
	if err != nil && source != "embedded Go Regular" {
		log.Printf("⚠️ Failed to parse font %s: %v", source, err)
		data, source = goregular.TTF, "embedded Go Regular"
		parsed, err = opentype.Parse(data)
	}
	if err != nil {
		return nil, "", err
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, "", err
	}
	return face, source, nil
}
