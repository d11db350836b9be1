// Package pcm converts between floating-point audio samples and 16-bit
// little-endian PCM, and between raw buffers and the base64 transport
// encoding used on the wire.
//
// All conversions are pure functions. Samples are mono, normalized to
// [-1, 1]; the integer side is signed 16-bit little-endian.
package pcm
