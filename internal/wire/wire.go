// Package wire encodes assignment id lists for transports that move bytes.
//
// Frame layout:
//
//	[flag uint8][body ...][checksum uint64 little-endian]
//
// The body is a uvarint count followed by one fixed-width little-endian
// uint64 per id, in list order. Ids are offsets far below 2^64, so the high
// bytes are mostly zero and zstd shrinks large bodies well. With FlagZstd the
// body is zstd compressed. The checksum is xxh3-64 of the uncompressed
// body.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

// Frame flags.
const (
	FlagRaw  byte = 0
	FlagZstd byte = 1
)

// DefaultCompressThreshold is the body size in bytes from which frames are compressed.
const DefaultCompressThreshold = 4096

const (
	flagSize     = 1
	checksumSize = 8
	idSize       = 8
)

// maxDecodedBody bounds the decompressed body so a corrupt frame cannot
// allocate without limit.
const maxDecodedBody = 1 << 30

// ErrCorruptPayload is returned when a frame fails to decode or verify.
var ErrCorruptPayload = errors.New("corrupt assignment payload")

var (
	encoderPool sync.Pool
	decoderPool sync.Pool
)

func getEncoder() (*zstd.Encoder, error) {
	if v := encoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}

	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getDecoder() (*zstd.Decoder, error) {
	if v := decoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}

	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxDecodedBody))
}

// Encode frames ids.
//
// Parameters:
//   - ids: Values to encode
//   - compressThreshold: Body size in bytes from which the body is compressed; <= 0 disables compression
//
// Returns:
//   - []byte: Encoded frame
//   - error: Encoder construction failure
func Encode(ids []uint64, compressThreshold int) ([]byte, error) {
	body := make([]byte, 0, binary.MaxVarintLen64+idSize*len(ids))
	body = binary.AppendUvarint(body, uint64(len(ids)))
	for _, id := range ids {
		body = binary.LittleEndian.AppendUint64(body, id)
	}
	sum := xxh3.Hash(body)

	flag := FlagRaw
	payload := body
	if compressThreshold > 0 && len(body) >= compressThreshold {
		enc, err := getEncoder()
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		compressed := enc.EncodeAll(body, nil)
		encoderPool.Put(enc)

		// Keep the raw body when compression does not pay off.
		if len(compressed) < len(body) {
			flag = FlagZstd
			payload = compressed
		}
	}

	frame := make([]byte, 0, flagSize+len(payload)+checksumSize)
	frame = append(frame, flag)
	frame = append(frame, payload...)
	frame = binary.LittleEndian.AppendUint64(frame, sum)

	return frame, nil
}

// Decode parses a frame produced by Encode.
//
// Returns:
//   - []uint64: Decoded ids (never nil on success)
//   - error: Wraps ErrCorruptPayload on any framing, compression or checksum failure
func Decode(frame []byte) ([]uint64, error) {
	if len(frame) < flagSize+checksumSize {
		return nil, fmt.Errorf("%w: frame of %d bytes is too short", ErrCorruptPayload, len(frame))
	}

	flag := frame[0]
	payload := frame[flagSize : len(frame)-checksumSize]
	want := binary.LittleEndian.Uint64(frame[len(frame)-checksumSize:])

	var body []byte
	switch flag {
	case FlagRaw:
		body = payload
	case FlagZstd:
		dec, err := getDecoder()
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		body, err = dec.DecodeAll(payload, nil)
		decoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown flag %d", ErrCorruptPayload, flag)
	}

	if got := xxh3.Hash(body); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch (got %016x, want %016x)", ErrCorruptPayload, got, want)
	}

	count, n := binary.Uvarint(body)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad count", ErrCorruptPayload)
	}
	body = body[n:]

	if count > uint64(len(body)/idSize) || uint64(len(body)) != count*idSize {
		return nil, fmt.Errorf("%w: count %d does not match %d body bytes", ErrCorruptPayload, count, len(body))
	}

	ids := make([]uint64, count)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint64(body[i*idSize:])
	}

	return ids, nil
}
