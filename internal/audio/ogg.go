package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
)

// oggPageHeader is the fixed part of an Ogg page plus its segment table.
type oggPageHeader struct {
	HeaderType   byte
	GranulePos   int64
	SerialNumber uint32
	SequenceNum  uint32
	SegmentTable []uint8
}

func (h *oggPageHeader) bodySize() int {
	var n int
	for _, seg := range h.SegmentTable {
		n += int(seg)
	}
	return n
}

func parseOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [27]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != "OggS" {
		return nil, errInvalidOggMagic
	}
	if buf[4] != 0 {
		return nil, errInvalidOggVersion
	}

	hdr := &oggPageHeader{
		HeaderType:   buf[5],
		GranulePos:   int64(binary.LittleEndian.Uint64(buf[6:14])), //nolint:gosec // granule is signed on the wire
		SerialNumber: binary.LittleEndian.Uint32(buf[14:18]),
		SequenceNum:  binary.LittleEndian.Uint32(buf[18:22]),
	}
	if n := buf[26]; n > 0 {
		hdr.SegmentTable = make([]uint8, n)
		if _, err := io.ReadFull(r, hdr.SegmentTable); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}

// oggPacketReader returns the packets of the first logical stream in a
// physical Ogg stream, joining packets that span pages. Pages of other
// logical streams are skipped.
type oggPacketReader struct {
	r       io.Reader
	queue   [][]byte
	partial []byte
	serial  uint32
	started bool
}

func newOggPacketReader(r io.Reader) *oggPacketReader {
	return &oggPacketReader{r: r}
}

// Next returns the next complete packet, or io.EOF at end of stream.
func (o *oggPacketReader) Next() ([]byte, error) {
	for len(o.queue) == 0 {
		if err := o.readPage(); err != nil {
			return nil, err
		}
	}
	pkt := o.queue[0]
	o.queue = o.queue[1:]
	return pkt, nil
}

func (o *oggPacketReader) readPage() error {
	hdr, err := parseOggPageHeader(o.r)
	if err != nil {
		return err
	}
	body := make([]byte, hdr.bodySize())
	if _, err := io.ReadFull(o.r, body); err != nil {
		return err
	}

	if !o.started {
		o.serial = hdr.SerialNumber
		o.started = true
	} else if hdr.SerialNumber != o.serial {
		return nil
	}

	pos := 0
	for _, seg := range hdr.SegmentTable {
		o.partial = append(o.partial, body[pos:pos+int(seg)]...)
		pos += int(seg)
		if seg < 255 {
			o.queue = append(o.queue, o.partial)
			o.partial = nil
		}
	}
	return nil
}

// oggStream decodes the audio packets of an Opus or Vorbis stream.
type oggStream struct {
	packets *oggPacketReader
	codec   oggCodec
	closer  io.Closer

	pcm  []float32
	buf  []float32
	pos  int
	skip int
	eof  bool
	err  error
}

func decodeOgg(rc io.ReadCloser) (beep.StreamCloser, beep.Format, error) {
	packets := newOggPacketReader(bufio.NewReader(rc))

	first, err := packets.Next()
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("ogg: reading identification header: %w", err)
	}
	codec, err := detectOggCodec(first)
	if err != nil {
		return nil, beep.Format{}, err
	}
	for !codec.Ready() {
		pkt, err := packets.Next()
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ogg: reading headers: %w", err)
		}
		if err := codec.AddHeaderPacket(pkt); err != nil {
			return nil, beep.Format{}, err
		}
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.SampleRate()),
		NumChannels: min(codec.Channels(), 2),
		Precision:   2,
	}
	s := &oggStream{
		packets: packets,
		codec:   codec,
		closer:  rc,
		pcm:     make([]float32, maxOggFrameSize*codec.Channels()),
		skip:    codec.PreSkip(),
	}
	return s, format, nil
}

func (s *oggStream) Stream(samples [][2]float64) (n int, ok bool) {
	channels := s.codec.Channels()
	for n < len(samples) {
		if s.pos < len(s.buf) {
			left := float64(s.buf[s.pos])
			right := left
			if channels > 1 {
				right = float64(s.buf[s.pos+1])
			}
			samples[n][0] = left
			samples[n][1] = right
			s.pos += channels
			n++
			continue
		}
		if s.eof || s.err != nil {
			break
		}
		s.decodeNext()
	}
	return n, n > 0
}

func (s *oggStream) decodeNext() {
	pkt, err := s.packets.Next()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.eof = true
		} else {
			s.err = err
		}
		return
	}
	// Corrupt packets are dropped rather than ending playback.
	frames, err := s.codec.Decode(pkt, s.pcm)
	if err != nil || frames <= 0 {
		return
	}
	channels := s.codec.Channels()
	s.buf = s.pcm[:frames*channels]
	s.pos = 0
	if s.skip > 0 {
		drop := min(s.skip, frames)
		s.pos = drop * channels
		s.skip -= drop
	}
}

func (s *oggStream) Err() error {
	return s.err
}

func (s *oggStream) Close() error {
	return s.closer.Close()
}
