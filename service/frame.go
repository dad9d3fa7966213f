// Package service distributes decoded records to in-process
// subscribers. Feed framing, per-schema record flows, prometheus
// metrics and the statics HTTP surface live here, the record codec
// itself stays transport-free.
package service

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrFrameTooLarge  = errors.New("frame exceeds size limit")
	ErrFrameCorrupted = errors.New("frame corrupted")
)

// MaxFrameBody bounds one frame's body. The largest built-in schema
// image is 602 bytes, 64 KiB leaves headroom for custom dictionaries.
const MaxFrameBody = 64 * 1024

// Frame carries one record image and the schema name to decode it
// with.
//
// Wire layout, little endian:
//
//	[1] schema name length
//	[n] schema name
//	[4] body length
//	[m] body
type Frame struct {
	Schema string
	Body   []byte
}

var frameBuffer = sync.Pool{
	New: func() any { return make([]byte, 0, 1024) },
}

// FrameWriter renders frames onto an io.Writer, one Write call per
// frame. Safe for concurrent use.
type FrameWriter struct {
	w   io.Writer
	mux sync.Mutex
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

func (fw *FrameWriter) Write(frame *Frame) error {
	if frame == nil {
		return errors.Wrap(ErrFrameCorrupted, "nil frame")
	}

	nameLen := len(frame.Schema)
	if nameLen == 0 || nameLen > 255 {
		return errors.Wrapf(
			ErrFrameCorrupted, "schema name length[%d]", nameLen,
		)
	}

	if len(frame.Body) > MaxFrameBody {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes", len(frame.Body))
	}

	buffer := frameBuffer.Get().([]byte)[:0]
	defer func() { frameBuffer.Put(buffer) }()

	buffer = append(buffer, byte(nameLen))
	buffer = append(buffer, frame.Schema...)
	buffer = binary.LittleEndian.AppendUint32(
		buffer, uint32(len(frame.Body)),
	)
	buffer = append(buffer, frame.Body...)

	fw.mux.Lock()
	defer fw.mux.Unlock()

	_, err := fw.w.Write(buffer)

	return errors.WithMessage(err, "write frame failed")
}

// FrameReader parses frames off an io.Reader.
type FrameReader struct {
	r      io.Reader
	header [4]byte
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// Read returns the next frame. A stream ending on a frame boundary
// yields io.EOF, an end inside a frame yields ErrFrameCorrupted.
func (fr *FrameReader) Read() (*Frame, error) {
	if _, err := io.ReadFull(fr.r, fr.header[:1]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, errors.WithMessage(err, "read frame header failed")
	}

	nameLen := int(fr.header[0])
	if nameLen == 0 {
		return nil, errors.Wrap(ErrFrameCorrupted, "empty schema name")
	}

	name := make([]byte, nameLen)
	if _, err := io.ReadFull(fr.r, name); err != nil {
		return nil, errors.Wrapf(
			ErrFrameCorrupted, "schema name truncated: %v", err,
		)
	}

	if _, err := io.ReadFull(fr.r, fr.header[:4]); err != nil {
		return nil, errors.Wrapf(
			ErrFrameCorrupted, "body length truncated: %v", err,
		)
	}

	bodyLen := binary.LittleEndian.Uint32(fr.header[:4])
	if bodyLen > MaxFrameBody {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d bytes", bodyLen)
	}

	frame := Frame{
		Schema: string(name),
		Body:   make([]byte, bodyLen),
	}

	if _, err := io.ReadFull(fr.r, frame.Body); err != nil {
		return nil, errors.Wrapf(
			ErrFrameCorrupted, "body truncated: %v", err,
		)
	}

	return &frame, nil
}
