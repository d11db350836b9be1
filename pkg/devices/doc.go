// Package devices provides concrete capture sources and playback sinks
// for the interpreter pipeline: a PortAudio microphone and speaker, and
// camera stand-ins (a synthetic test pattern and an image-directory
// source) for hosts without a camera API.
//
// Everything here satisfies the capability interfaces in pkg/capture
// and pkg/playback; nothing else in the module touches real hardware.
package devices
