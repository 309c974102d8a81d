package source

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/google/uuid"
)

// Handle is an opaque, rebindable audio source. Its identity is a token
// minted at resolve time, so two handles for the same URI are still
// distinct sources and reconnect checks never compare file paths.
type Handle struct {
	id  string
	uri string
	f   *os.File
}

func newHandle(uri string, f *os.File) *Handle {
	return &Handle{id: uuid.NewString(), uri: uri, f: f}
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) URI() string { return h.uri }

// ReadWindow fills dst with the next PCM samples (s16le, normalized to
// [-1,1]) and returns the sample count. io.EOF marks the natural end of
// the track.
func (h *Handle) ReadWindow(dst []float64) (int, error) {
	buf := make([]byte, len(dst)*2)
	n, err := io.ReadFull(h.f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, err
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		dst[i] = float64(v) / 32768.0
	}
	return samples, nil
}

// Rewind seeks back to the start of the track (used by the "previous
// restarts after 3s" scrub path).
func (h *Handle) Rewind() error {
	_, err := h.f.Seek(0, io.SeekStart)
	return err
}

func (h *Handle) Close() error {
	return h.f.Close()
}
