package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeOggPage appends a page to w. Packets longer than 255 bytes are
// laced across segments; a packet ending exactly on 255 gets a zero
// terminator unless open is set, which leaves the last packet
// continuing onto the next page.
func writeOggPage(w *bytes.Buffer, serial, sequence uint32, open bool, packets ...[]byte) {
	var segments []byte
	var body []byte
	for i, pkt := range packets {
		remaining := len(pkt)
		for remaining >= 255 {
			segments = append(segments, 255)
			remaining -= 255
		}
		if !(open && i == len(packets)-1 && remaining == 0) {
			segments = append(segments, byte(remaining))
		}
		body = append(body, pkt...)
	}

	w.WriteString("OggS")
	w.WriteByte(0)
	w.WriteByte(0)
	_ = binary.Write(w, binary.LittleEndian, int64(0))
	_ = binary.Write(w, binary.LittleEndian, serial)
	_ = binary.Write(w, binary.LittleEndian, sequence)
	_ = binary.Write(w, binary.LittleEndian, uint32(0))
	w.WriteByte(byte(len(segments)))
	w.Write(segments)
	w.Write(body)
}

func opusHead(channels byte, preSkip uint16) []byte {
	pkt := []byte("OpusHead")
	pkt = append(pkt, 1, channels)
	pkt = binary.LittleEndian.AppendUint16(pkt, preSkip)
	pkt = binary.LittleEndian.AppendUint32(pkt, 48000)
	return append(pkt, 0, 0, 0)
}

func opusTags() []byte {
	pkt := []byte("OpusTags")
	pkt = binary.LittleEndian.AppendUint32(pkt, 0)
	return binary.LittleEndian.AppendUint32(pkt, 0)
}

func filled(n int, b byte) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestParseOggPageHeader(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 7, 3, false, filled(100, 1), filled(50, 2))

	hdr, err := parseOggPageHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), hdr.SerialNumber)
	assert.Equal(t, uint32(3), hdr.SequenceNum)
	assert.Equal(t, []uint8{100, 50}, hdr.SegmentTable)
	assert.Equal(t, 150, hdr.bodySize())
}

func TestParseOggPageHeader_Invalid(t *testing.T) {
	_, err := parseOggPageHeader(bytes.NewReader([]byte("RIFF0000000000000000000000000")))
	assert.ErrorIs(t, err, errInvalidOggMagic)

	var buf bytes.Buffer
	writeOggPage(&buf, 1, 0, false, []byte{1})
	data := buf.Bytes()
	data[4] = 1
	_, err = parseOggPageHeader(bytes.NewReader(data))
	assert.ErrorIs(t, err, errInvalidOggVersion)

	_, err = parseOggPageHeader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestOggPacketReader_PacketsInOrder(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 1, 0, false, filled(10, 'a'), filled(255, 'b'), filled(600, 'c'))
	writeOggPage(&buf, 1, 1, false, filled(3, 'd'))

	r := newOggPacketReader(&buf)
	for _, want := range [][]byte{filled(10, 'a'), filled(255, 'b'), filled(600, 'c'), filled(3, 'd')} {
		got, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOggPacketReader_SpansPages(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 1, 0, true, filled(510, 'x'))
	writeOggPage(&buf, 1, 1, false, filled(20, 'x'))

	r := newOggPacketReader(&buf)
	got, err := r.Next()
	require.NoError(t, err)
	assert.Len(t, got, 530)
}

func TestOggPacketReader_SkipsOtherStreams(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 1, 0, false, []byte("first"))
	writeOggPage(&buf, 2, 0, false, []byte("other"))
	writeOggPage(&buf, 1, 1, false, []byte("second"))

	r := newOggPacketReader(&buf)
	for _, want := range []string{"first", "second"} {
		got, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestDetectOggCodec(t *testing.T) {
	codec, err := detectOggCodec(opusHead(2, 312))
	require.NoError(t, err)
	require.IsType(t, &opusCodec{}, codec)
	assert.Equal(t, 48000, codec.SampleRate())
	assert.Equal(t, 2, codec.Channels())
	assert.Equal(t, 312, codec.PreSkip())
	assert.False(t, codec.Ready())

	_, err = detectOggCodec([]byte("\x01vorbi"))
	assert.ErrorIs(t, err, errUnknownOggCodec)

	_, err = detectOggCodec([]byte("fLaC"))
	assert.ErrorIs(t, err, errUnknownOggCodec)
}

func TestDetectOggCodec_InvalidHeaders(t *testing.T) {
	badVersion := opusHead(2, 0)
	badVersion[8] = 2
	_, err := detectOggCodec(badVersion)
	assert.ErrorIs(t, err, errUnsupportedOpus)

	_, err = detectOggCodec(opusHead(2, 0)[:18])
	assert.ErrorIs(t, err, errInvalidOpusHead)

	_, err = detectOggCodec(opusHead(0, 0))
	assert.ErrorIs(t, err, errInvalidOpusHead)

	vorbis := []byte{0x01, 'v', 'o', 'r', 'b', 'i', 's', 0, 0, 0, 0, 0, 0x44, 0xAC, 0, 0}
	_, err = detectOggCodec(vorbis)
	assert.ErrorIs(t, err, errInvalidVorbisHeader, "zero channels")

	vorbis[11] = 2
	codec, err := detectOggCodec(vorbis)
	require.NoError(t, err)
	assert.Equal(t, 44100, codec.SampleRate())
	assert.Equal(t, 0, codec.PreSkip())
	assert.False(t, codec.Ready())
}

func TestOpusCodec_RequiresTags(t *testing.T) {
	codec, err := newOpusCodec(opusHead(1, 0))
	require.NoError(t, err)
	assert.ErrorIs(t, codec.AddHeaderPacket([]byte("garbage!")), errInvalidOpusTags)
	assert.False(t, codec.Ready())
	require.NoError(t, codec.AddHeaderPacket(opusTags()))
	assert.True(t, codec.Ready())
}

func TestDecodeOgg_HeadersOnly(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 9, 0, false, opusHead(2, 0))
	writeOggPage(&buf, 9, 1, false, opusTags())

	s, format, err := decodeOgg(io.NopCloser(&buf))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, beep.SampleRate(48000), format.SampleRate)
	assert.Equal(t, 2, format.NumChannels)

	samples := make([][2]float64, 64)
	n, ok := s.Stream(samples)
	assert.Equal(t, 0, n)
	assert.False(t, ok)
	assert.NoError(t, s.Err())
}

func TestDecodeOgg_TruncatedHeaders(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 9, 0, false, opusHead(2, 0))

	_, _, err := decodeOgg(io.NopCloser(&buf))
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeFile_UnsupportedExtension(t *testing.T) {
	_, _, err := decodeFile(io.NopCloser(bytes.NewReader(nil)), "/x/sound.aiff")
	assert.ErrorIs(t, err, errUnsupportedFormat)
}
