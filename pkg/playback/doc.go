// Package playback schedules decoded audio frames for gapless sequential
// playback. Frames arrive at unpredictable times; the scheduler keeps a
// monotonic cursor (the next allowed start time) so that consecutive
// frames never overlap and play back-to-back when the network keeps up.
//
// The wall clock and the audio output are capability interfaces so tests
// can substitute fakes.
package playback
