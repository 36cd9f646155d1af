package simdex

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/smartwardrobe/simdex/flat"
)

// Compression selects the snapshot payload compression.
type Compression uint8

const (
	// CompressionNone stores the raw vector buffer.
	CompressionNone Compression = iota
	// CompressionLZ4 trades a little CPU for fast, light compression.
	CompressionLZ4
	// CompressionZstd compresses harder; preferable for remote blob stores.
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Snapshot envelope, little-endian:
//
//	[0:4] magic "SWS1"
//	[4:6] format version
//	[6]   compression
//	[7]   reserved
//	[8:]  flat index stream, compressed per [6]
//
// The envelope carries only vectors. Item ids and ownership are always
// rederived from the catalog on load: the snapshot is a computation-avoidance
// cache, never a source of truth for identity.
const envelopeHeaderSize = 8

var (
	snapshotMagic   = [4]byte{'S', 'W', 'S', '1'}
	snapshotVersion = uint16(1)
)

var (
	errSnapshotMagic   = errors.New("simdex: invalid snapshot magic")
	errSnapshotVersion = errors.New("simdex: unsupported snapshot version")
)

func encodeSnapshot(vectors *flat.Index, compression Compression) ([]byte, error) {
	var payload bytes.Buffer
	if _, err := vectors.WriteTo(&payload); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	var hdr [envelopeHeaderSize]byte
	copy(hdr[0:4], snapshotMagic[:])
	hdr[4] = byte(snapshotVersion)
	hdr[5] = byte(snapshotVersion >> 8)
	hdr[6] = byte(compression)
	buf.Write(hdr[:])

	switch compression {
	case CompressionNone:
		buf.Write(payload.Bytes())
	case CompressionLZ4:
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(payload.Bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		buf.Write(enc.EncodeAll(payload.Bytes(), nil))
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("simdex: unsupported compression: %s", compression)
	}

	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) (*flat.Index, error) {
	if len(data) < envelopeHeaderSize {
		return nil, errSnapshotMagic
	}
	if [4]byte(data[0:4]) != snapshotMagic {
		return nil, errSnapshotMagic
	}
	if v := uint16(data[4]) | uint16(data[5])<<8; v != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", errSnapshotVersion, v)
	}

	compression := Compression(data[6])
	payload := data[envelopeHeaderSize:]

	var r io.Reader
	switch compression {
	case CompressionNone:
		r = bytes.NewReader(payload)
	case CompressionLZ4:
		r = lz4.NewReader(bytes.NewReader(payload))
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		raw, err := dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(raw)
	default:
		return nil, fmt.Errorf("simdex: unsupported snapshot compression: %s", compression)
	}

	return flat.Read(r)
}
