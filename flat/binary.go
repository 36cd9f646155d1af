package flat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Binary format, little-endian:
//
//	[0:4]   magic "SWF1"
//	[4:6]   format version
//	[6:8]   reserved
//	[8:12]  dimension
//	[12:16] reserved
//	[16:24] vector count
//	[24:]   count*dimension float32 values
const headerSize = 24

var (
	fileMagic     = [4]byte{'S', 'W', 'F', '1'}
	formatVersion = uint16(1)
)

var (
	// ErrInvalidMagic is returned when the stream does not start with the flat index magic.
	ErrInvalidMagic = errors.New("flat: invalid magic")

	// ErrInvalidVersion is returned for an unsupported format version.
	ErrInvalidVersion = errors.New("flat: unsupported format version")
)

// WriteTo writes the index to w in binary format.
// It matches the io.WriterTo interface for toolchain friendliness.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	var hdr [headerSize]byte
	copy(hdr[0:4], fileMagic[:])
	binary.LittleEndian.PutUint16(hdr[4:6], formatVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(x.dimension))
	binary.LittleEndian.PutUint64(hdr[16:24], uint64(x.Size()))

	n, err := w.Write(hdr[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	buf := make([]byte, 4*len(x.data))
	for i, f := range x.data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	n, err = w.Write(buf)
	written += int64(n)
	return written, err
}

// Read decodes an index previously written by WriteTo.
func Read(r io.Reader) (*Index, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("flat: read header: %w", err)
	}
	if [4]byte(hdr[0:4]) != fileMagic {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}

	dim := int(binary.LittleEndian.Uint32(hdr[8:12]))
	count := binary.LittleEndian.Uint64(hdr[16:24])
	if dim <= 0 {
		return nil, fmt.Errorf("flat: invalid dimension in header: %d", dim)
	}
	if count > math.MaxUint32 {
		return nil, fmt.Errorf("flat: vector count %d exceeds ordinal space", count)
	}

	buf := make([]byte, 4*int(count)*dim)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("flat: read vectors: %w", err)
	}

	data := make([]float32, int(count)*dim)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}

	return &Index{dimension: dim, data: data}, nil
}
