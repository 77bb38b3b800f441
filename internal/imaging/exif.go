package imaging

import (
	"io"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// exifFields collects EXIF tags while walking a decoded block.
type exifFields map[string]string

func (f exifFields) Walk(name exif.FieldName, tag *tiff.Tag) error {
	// MakerNote and thumbnail data are large binary blobs.
	if name == exif.MakerNote || strings.HasPrefix(string(name), "Thumb") {
		return nil
	}
	f[string(name)] = strings.Trim(tag.String(), `"`)
	return nil
}

// ReadEXIF returns the EXIF tags found in r keyed by tag name. It returns nil
// when r carries no EXIF block or the block cannot be decoded.
func ReadEXIF(r io.Reader) map[string]string {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}

	fields := make(exifFields)
	if err := x.Walk(fields); err != nil {
		return nil
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
