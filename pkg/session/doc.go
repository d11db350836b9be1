// Package session owns the lifecycle of one live interpreter session:
// it acquires capture devices, opens the remote stream, forwards
// outbound media chunks, and dispatches inbound messages to audio
// playback and the transcript aggregator.
//
// The controller is a state machine (Disconnected → Connecting →
// Connected → Disconnected or Errored). Inbound messages are consumed
// by a single dispatch goroutine, so the playback cursor and the
// pending transcript buffers are never touched concurrently.
package session
