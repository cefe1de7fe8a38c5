// Package textstream turns a stream of arbitrary byte chunks into text. Chunk boundaries come from
// the transport and may fall inside a multi-byte character; the decoder carries the incomplete
// tail over to the next chunk.
package textstream

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const bufSize = 4096

// Decoder incrementally decodes UTF-8 chunks. Invalid sequences are replaced with U+FFFD.
// A Decoder belongs to a single response stream and is not safe for concurrent use.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	buf     []byte
}

// NewDecoder returns a Decoder with no carried-over state.
func NewDecoder() *Decoder {
	return &Decoder{
		t:   unicode.UTF8.NewDecoder(),
		buf: make([]byte, bufSize),
	}
}

// Decode returns the text of every complete character available after appending chunk to the
// bytes carried over from the previous call.
func (d *Decoder) Decode(chunk []byte) (string, error) {
	return d.decode(chunk, false)
}

// Flush decodes whatever is still carried over, treating it as the end of the stream.
func (d *Decoder) Flush() (string, error) {
	return d.decode(nil, true)
}

// Pending reports how many bytes of an incomplete character are being carried over.
func (d *Decoder) Pending() int {
	return len(d.pending)
}

// Reset drops carried-over bytes so the Decoder can start a new stream.
func (d *Decoder) Reset() {
	d.t.Reset()
	d.pending = nil
}

func (d *Decoder) decode(chunk []byte, atEOF bool) (string, error) {
	src := chunk
	if len(d.pending) > 0 {
		src = make([]byte, 0, len(d.pending)+len(chunk))
		src = append(src, d.pending...)
		src = append(src, chunk...)
		d.pending = nil
	}

	var sb strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.buf, src, atEOF)
		sb.Write(d.buf[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			return sb.String(), nil
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), src...)
			return sb.String(), nil
		default:
			return sb.String(), fmt.Errorf("failed to decode chunk: %w", err)
		}
	}
}
