package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeSeries packs values as little-endian IEEE 754 float64s. NaN and
// infinities survive the round trip bit for bit.
func EncodeSeries(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeSeries is the inverse of EncodeSeries.
func DecodeSeries(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("series blob length %d is not a multiple of 8", len(b))
	}
	values := make([]float64, len(b)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return values, nil
}
