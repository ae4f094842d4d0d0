// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"spectrum/internal/fft"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Spectrum Type     | uint8          | 1            | power/magnitude/energy  |
| Value Count       | uint16         | 2            | Number of floats (N)    |
| Values            | []float32      | N * 4        | One value per bin       |
+-----------------------------------------------------------------------------+
*/

// HeaderSize is the number of bytes preceding the values.
const HeaderSize = 4 + 8 + 1 + 2

// MaxValues is the largest number of values a packet can carry.
const MaxValues = math.MaxUint16

var errShortPacket = errors.New("udp packet too short")

// Packet is a decoded spectrum packet.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Kind      fft.SpectrumType
	Values    []float32
}

// AppendPacket appends the encoding of a packet to dst and returns the
// extended slice.
func AppendPacket(dst []byte, seq uint32, timestamp int64, kind fft.SpectrumType, values []float64) ([]byte, error) {
	if len(values) > MaxValues {
		return dst, fmt.Errorf("packet holds at most %d values, got %d", MaxValues, len(values))
	}
	dst = binary.BigEndian.AppendUint32(dst, seq)
	dst = binary.BigEndian.AppendUint64(dst, uint64(timestamp))
	dst = append(dst, byte(kind))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(values)))
	for _, v := range values {
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(v)))
	}
	return dst, nil
}

// DecodePacket parses a packet produced by AppendPacket.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, errShortPacket
	}
	p := Packet{
		Sequence:  binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
		Kind:      fft.SpectrumType(b[12]),
	}
	n := int(binary.BigEndian.Uint16(b[13:15]))
	body := b[HeaderSize:]
	if len(body) < n*4 {
		return Packet{}, fmt.Errorf("%w: want %d values, have %d bytes", errShortPacket, n, len(body))
	}
	p.Values = make([]float32, n)
	for i := range p.Values {
		p.Values[i] = math.Float32frombits(binary.BigEndian.Uint32(body[i*4:]))
	}
	return p, nil
}
