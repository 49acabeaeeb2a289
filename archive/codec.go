package archive

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the compression of archived objects.
type Codec int

const (
	// CodecZstd compresses with Zstandard.
	CodecZstd Codec = iota
	// CodecLZ4 compresses with LZ4 frames.
	CodecLZ4
	// CodecNone stores files as they are.
	CodecNone
)

// ErrUnknownCodec is returned for an unsupported Codec value.
var ErrUnknownCodec = errors.New("archive: unknown codec")

var codecs = []Codec{CodecZstd, CodecLZ4, CodecNone}

func (c Codec) String() string {
	switch c {
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	case CodecNone:
		return "none"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// Ext returns the object name suffix of the codec.
func (c Codec) Ext() string {
	switch c {
	case CodecZstd:
		return ".zst"
	case CodecLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// codecFor splits an object's base name into file name and codec.
func codecFor(base string) (string, Codec) {
	for _, c := range codecs {
		if ext := c.Ext(); ext != "" && strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext), c
		}
	}
	return base, CodecNone
}

func (c Codec) newWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CodecZstd:
		e, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		return e, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	case CodecNone:
		return nopWriteCloser{w}, nil
	default:
		return nil, ErrUnknownCodec
	}
}

func (c Codec) newReader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CodecZstd:
		d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CodecNone:
		return io.NopCloser(r), nil
	default:
		return nil, ErrUnknownCodec
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
