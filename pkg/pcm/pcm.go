package pcm

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
)

// ErrOddLength is returned when a PCM16 byte buffer does not contain a
// whole number of samples.
var ErrOddLength = errors.New("pcm: byte length is not a multiple of 2")

// FloatToPCM16 converts normalized float samples to 16-bit little-endian
// PCM. Samples outside [-1, 1] are clamped.
func FloatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// PCM16ToFloat converts 16-bit little-endian PCM bytes to normalized
// float samples, scaled by 1/32768. It returns ErrOddLength when the
// buffer does not hold a whole number of samples.
func PCM16ToFloat(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, ErrOddLength
	}
	out := make([]float32, len(data)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(v) / 32768
	}
	return out, nil
}

// EncodeBase64 encodes raw bytes into the text-safe transport encoding.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes the transport encoding back into raw bytes.
// DecodeBase64(EncodeBase64(b)) == b for all b.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
