// Package transcript reconciles streamed text fragments into finalized
// conversational turns. Output fragments accumulate in a pending buffer
// (also shown as the live preview) until the model signals the end of a
// turn; input fragments (the user's own speech) accumulate in a second
// buffer and finalize symmetrically.
package transcript
