// Package capture turns local microphone and camera input into outbound
// media chunks: fixed-size audio blocks downsampled to 16kHz PCM, and
// periodic JPEG snapshots.
//
// Devices sit behind the AudioSource and VideoSource interfaces so the
// pipeline can run against portaudio, a browser bridge, or fakes in
// tests. The pipeline owns the acquired sources: Close releases them and
// is safe to call multiple times, even on a partially-built pipeline.
package capture
