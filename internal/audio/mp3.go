package audio

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

var errMP3SampleRate = errors.New("mp3: invalid sample rate")

// mp3Stream adapts go-mp3's 16-bit stereo PCM reader to beep.
type mp3Stream struct {
	decoder *mp3.Decoder
	closer  io.Closer
	err     error
	buf     []byte
}

func decodeMP3(rc io.ReadCloser) (beep.StreamCloser, beep.Format, error) {
	decoder, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	rate := decoder.SampleRate()
	if rate <= 0 {
		return nil, beep.Format{}, errMP3SampleRate
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Stream{decoder: decoder, closer: rc, buf: make([]byte, 8192)}, format, nil
}

func (s *mp3Stream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	need := len(samples) * 4
	if len(s.buf) < need {
		s.buf = make([]byte, need)
	}
	read, err := io.ReadFull(s.decoder, s.buf[:need])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}
	n = read / 4
	for i := range n {
		off := i * 4
		left := int16(binary.LittleEndian.Uint16(s.buf[off:]))    //nolint:gosec // pcm sample
		right := int16(binary.LittleEndian.Uint16(s.buf[off+2:])) //nolint:gosec // pcm sample
		samples[i][0] = float64(left) / 32768.0
		samples[i][1] = float64(right) / 32768.0
	}
	return n, n > 0
}

func (s *mp3Stream) Err() error {
	return s.err
}

func (s *mp3Stream) Close() error {
	return s.closer.Close()
}
