package audio

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

var errUnsupportedFormat = errors.New("unsupported audio format")

// decodeFile picks a decoder from the file extension.
func decodeFile(rc io.ReadCloser, path string) (beep.StreamCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(rc)
	case ".flac":
		return flac.Decode(rc)
	case ".mp3":
		return decodeMP3(rc)
	case ".ogg", ".oga", ".opus":
		return decodeOgg(rc)
	default:
		return nil, beep.Format{}, errUnsupportedFormat
	}
}
