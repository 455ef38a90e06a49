package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/livemind/livemind/pkg/archive"
	"github.com/livemind/livemind/pkg/cli"
	"github.com/livemind/livemind/pkg/live"
	"github.com/livemind/livemind/pkg/live/device"
)

var (
	liveVoice     string
	liveModel     string
	liveNoCamera  bool
	liveNoMic     bool
	liveFrameRate int
	liveVolume    int
	liveProxyURL  string
	livePersona   string
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Hold a live audio/video conversation",
	Long: `Hold a live audio/video conversation from the terminal.

Microphone audio and camera frames stream to the model; replies play
through the speaker and both transcripts render as turns complete. If the
context has an archive URL configured, completed turns are recorded there.

Press Ctrl-C to end the session.

Example:
  livemind -c myctx live
  livemind -c myctx live --voice Puck --no-camera`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}
		if cliCtx.APIKey == "" {
			return fmt.Errorf("context %q has no API key configured", cliCtx.Name)
		}

		if err := setupLiveLogging(); err != nil {
			return err
		}

		settings := live.DefaultSettings()
		settings.CameraEnabled = !liveNoCamera
		settings.MicEnabled = !liveNoMic
		if liveVoice != "" {
			settings.VoiceName = liveVoice
		} else if cliCtx.VoiceName != "" {
			settings.VoiceName = cliCtx.VoiceName
		}
		if !live.ValidVoice(settings.VoiceName) {
			return fmt.Errorf("unknown voice %q (valid: %v)", settings.VoiceName, live.Voices)
		}

		systemInstruction := ""
		if livePersona != "" {
			s, ok := live.Persona(livePersona)
			if !ok {
				names := make([]string, 0, len(live.Personas))
				for name := range live.Personas {
					names = append(names, name)
				}
				sort.Strings(names)
				return fmt.Errorf("unknown persona %q (valid: %v)", livePersona, names)
			}
			systemInstruction = s
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		var dialer live.Dialer
		if liveProxyURL != "" {
			dialer = &live.WebSocketDialer{URL: liveProxyURL, APIKey: cliCtx.APIKey}
		} else {
			gd, err := live.NewGeminiDialer(ctx, cliCtx.APIKey)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			dialer = gd
		}

		devices := device.New(device.Config{
			MicDevice:    cliCtx.MicDevice,
			CameraDevice: cliCtx.CameraDevice,
		})
		speaker := device.NewSpeaker(liveVolume)
		defer speaker.Close()

		var recorder live.Recorder
		if cliCtx.ArchiveURL != "" {
			recorder = archive.NewClient(cliCtx.ArchiveURL)
		}

		host, _ := os.Hostname()
		ctl := live.NewController(live.Config{
			Model:             liveModel,
			SystemInstruction: systemInstruction,
			FrameRate:         liveFrameRate,
			UserID:            cliCtx.UserID,
			ClientIdentifier:  host,
			DeviceType:        "terminal",
		}, dialer, devices, speaker, recorder)

		styles := cli.NewStyles(cli.DefaultTheme)
		done := make(chan struct{})
		var once sync.Once

		ctl.OnState = func(s live.State) {
			fmt.Println(styles.StatusLine("%s", s))
			if s == live.StateIdle {
				once.Do(func() { close(done) })
			}
		}
		ctl.OnEntries = func(entries []live.Entry) {
			for _, e := range entries {
				fmt.Println(styles.TranscriptLine(string(e.Sender), e.Text))
			}
			fmt.Println(styles.Rule(40))
		}
		ctl.OnError = func(e *live.Error) {
			fmt.Println(styles.ErrorBanner(e.Describe()))
		}
		if verbose {
			ctl.OnPartial = func(input, output string) {
				slog.Debug("partial transcript", "input", input, "output", output)
			}
		}

		if err := ctl.Start(ctx, settings); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			ctl.Stop()
			<-done
		case <-done:
		}
		return nil
	},
}

// setupLiveLogging sends slog output to a file so the transcript stays
// readable on the terminal.
func setupLiveLogging() error {
	paths, err := cli.NewPaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureLogDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(paths.LogDir(), "live.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return nil
}

func init() {
	liveCmd.Flags().StringVar(&liveVoice, "voice", "", "voice name (default from context, then Zephyr)")
	liveCmd.Flags().StringVar(&liveModel, "model", "", "conversation model override")
	liveCmd.Flags().BoolVar(&liveNoCamera, "no-camera", false, "disable camera capture")
	liveCmd.Flags().BoolVar(&liveNoMic, "no-mic", false, "start with the microphone muted")
	liveCmd.Flags().IntVar(&liveFrameRate, "frame-rate", 0, "camera frames per second")
	liveCmd.Flags().IntVar(&liveVolume, "volume", 0, "playback volume 0-100")
	liveCmd.Flags().StringVar(&liveProxyURL, "proxy-url", "", "gateway WebSocket URL to dial instead of the API")
	liveCmd.Flags().StringVar(&livePersona, "persona", "", "system instruction preset (empathy, label-lens, observer)")
}
