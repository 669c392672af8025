package audio

import (
	"encoding/binary"
	"errors"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

const (
	opusSampleRate = 48000
	// maxOggFrameSize bounds the samples per channel of one decoded
	// packet: 8192 for Vorbis long blocks, 5760 for 120ms Opus frames.
	maxOggFrameSize = 8192
	maxOggChannels  = 8
)

var (
	errUnknownOggCodec      = errors.New("ogg: unknown codec (not Opus or Vorbis)")
	errInvalidOpusHead      = errors.New("opus: invalid identification header")
	errInvalidOpusTags      = errors.New("opus: invalid comment header")
	errUnsupportedOpus      = errors.New("opus: unsupported version")
	errInvalidVorbisHeader  = errors.New("vorbis: invalid identification header")
	errVorbisNotInitialized = errors.New("vorbis: decoder not initialized (headers incomplete)")
	errVorbisBufferTooSmall = errors.New("vorbis: output buffer too small")
)

// oggCodec decodes the packets of one Ogg logical stream.
type oggCodec interface {
	SampleRate() int
	Channels() int
	// PreSkip is the number of samples per channel to drop at stream start.
	PreSkip() int
	// Ready reports whether all header packets have been consumed.
	Ready() bool
	AddHeaderPacket(packet []byte) error
	// Decode writes interleaved samples to pcm and returns the number of
	// samples per channel.
	Decode(packet []byte, pcm []float32) (int, error)
}

// detectOggCodec identifies the codec from the first packet of a stream.
func detectOggCodec(first []byte) (oggCodec, error) {
	if len(first) >= 8 && string(first[:8]) == "OpusHead" {
		return newOpusCodec(first)
	}
	if len(first) >= 7 && first[0] == 0x01 && string(first[1:7]) == "vorbis" {
		return newVorbisCodec(first)
	}
	return nil, errUnknownOggCodec
}

type opusCodec struct {
	decoder  *opus.Decoder
	channels int
	preSkip  int
	tagsSeen bool
}

func newOpusCodec(packet []byte) (*opusCodec, error) {
	// "OpusHead", version, channels, pre-skip, input rate, gain, mapping.
	if len(packet) < 19 {
		return nil, errInvalidOpusHead
	}
	if packet[8] != 1 {
		return nil, errUnsupportedOpus
	}
	channels := int(packet[9])
	if channels < 1 || channels > 2 {
		return nil, errInvalidOpusHead
	}
	decoder, err := opus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		decoder:  decoder,
		channels: channels,
		preSkip:  int(binary.LittleEndian.Uint16(packet[10:12])),
	}, nil
}

// SampleRate is always 48000; the header's input rate is informational.
func (c *opusCodec) SampleRate() int { return opusSampleRate }
func (c *opusCodec) Channels() int   { return c.channels }
func (c *opusCodec) PreSkip() int    { return c.preSkip }
func (c *opusCodec) Ready() bool     { return c.tagsSeen }

func (c *opusCodec) AddHeaderPacket(packet []byte) error {
	if len(packet) < 8 || string(packet[:8]) != "OpusTags" {
		return errInvalidOpusTags
	}
	c.tagsSeen = true
	return nil
}

func (c *opusCodec) Decode(packet []byte, pcm []float32) (int, error) {
	return c.decoder.DecodeFloat32(packet, pcm)
}

type vorbisCodec struct {
	decoder    *vorbis.Decoder
	channels   int
	sampleRate int
	headers    [][]byte
}

func newVorbisCodec(packet []byte) (*vorbisCodec, error) {
	// type, "vorbis", version, channels, sample rate.
	if len(packet) < 16 {
		return nil, errInvalidVorbisHeader
	}
	if binary.LittleEndian.Uint32(packet[7:11]) != 0 {
		return nil, errInvalidVorbisHeader
	}
	channels := int(packet[11])
	rate := int(binary.LittleEndian.Uint32(packet[12:16]))
	if channels < 1 || channels > maxOggChannels || rate <= 0 {
		return nil, errInvalidVorbisHeader
	}
	ident := make([]byte, len(packet))
	copy(ident, packet)
	return &vorbisCodec{
		channels:   channels,
		sampleRate: rate,
		headers:    [][]byte{ident},
	}, nil
}

func (c *vorbisCodec) SampleRate() int { return c.sampleRate }
func (c *vorbisCodec) Channels() int   { return c.channels }
func (c *vorbisCodec) PreSkip() int    { return 0 }
func (c *vorbisCodec) Ready() bool     { return c.decoder != nil }

// AddHeaderPacket collects the comment and setup headers and builds the
// decoder once all three are present.
func (c *vorbisCodec) AddHeaderPacket(packet []byte) error {
	if c.decoder != nil {
		return nil
	}
	hdr := make([]byte, len(packet))
	copy(hdr, packet)
	c.headers = append(c.headers, hdr)
	if len(c.headers) < 3 {
		return nil
	}

	decoder := &vorbis.Decoder{}
	for _, h := range c.headers {
		if err := decoder.ReadHeader(h); err != nil {
			return err
		}
	}
	c.decoder = decoder
	c.headers = nil
	return nil
}

func (c *vorbisCodec) Decode(packet []byte, pcm []float32) (int, error) {
	if c.decoder == nil {
		return 0, errVorbisNotInitialized
	}
	samples, err := c.decoder.Decode(packet)
	if err != nil {
		return 0, err
	}
	if len(pcm) < len(samples) {
		return 0, errVorbisBufferTooSmall
	}
	n := copy(pcm, samples)
	return n / c.channels, nil
}
