// Package live drives a bidirectional audio/video conversation with a
// multimodal reasoning service while persisting the transcript.
//
// The Controller owns one session at a time: it acquires capture devices,
// opens the transport, pumps encoded microphone blocks and camera frames
// outward, and demultiplexes the inbound event stream into transcript
// accumulation, gapless audio playback and best-effort persistence calls.
//
// # Starting a session
//
//	dialer, err := live.NewGeminiDialer(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	ctl := live.NewController(live.Config{UserID: "alice"}, dialer, devices, speaker, recorder)
//	if err := ctl.Start(ctx, live.DefaultSettings()); err != nil {
//	    return err
//	}
//	defer ctl.Stop()
//
// # Receiving transcript updates
//
//	ctl.OnPartial = func(input, output string) {
//	    render(input, output)
//	}
//	ctl.OnEntries = func(entries []live.Entry) {
//	    for _, e := range entries {
//	        fmt.Printf("%s: %s\n", e.Sender, e.Text)
//	    }
//	}
//
// Transport errors are classified: credential and billing failures latch a
// hold that blocks further starts until ResetCredential is called, while
// transient network failures simply return the controller to idle.
package live
