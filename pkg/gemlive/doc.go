// Package gemlive provides a client for the Gemini Live API over
// WebSocket (BidiGenerateContent).
//
// A session is one persistent bidirectional stream: the client pushes
// PCM audio chunks and JPEG snapshots as they are captured, and the
// server streams back spoken audio, transcripts of both directions, and
// turn-complete markers.
//
// # Connecting
//
//	client := gemlive.NewClient(apiKey)
//	session, err := client.Connect(ctx, &gemlive.ConnectConfig{
//	    Model:             gemlive.ModelFlashLive,
//	    Voice:             "Aoede",
//	    SystemInstruction: "You are a helpful interpreter.",
//	})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
// # Streaming media
//
//	// PCM 16-bit, 16kHz, mono
//	err = session.SendAudio(pcmData)
//	// JPEG snapshot
//	err = session.SendImage(jpegData)
//
// # Receiving messages
//
//	for msg, err := range session.Messages() {
//	    if err != nil {
//	        return err
//	    }
//	    if msg.Audio != nil {
//	        play(msg.Audio, msg.AudioRate)
//	    }
//	    if msg.TurnComplete {
//	        finalizeTurn()
//	    }
//	}
package gemlive
