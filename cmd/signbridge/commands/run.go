package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/openinterp/signbridge/cmd/signbridge/internal/config"
	"github.com/openinterp/signbridge/pkg/capture"
	"github.com/openinterp/signbridge/pkg/devices"
	"github.com/openinterp/signbridge/pkg/session"
	"github.com/openinterp/signbridge/pkg/transcript"
)

var (
	runSave    string
	runMute    bool
	runNoVideo bool
	runModel   string
	runVoice   string
	runTimeout time.Duration
)

var (
	styleState = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	styleUser  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	styleModel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d2a8ff"))
	styleDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	styleError = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff6b6b"))
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a live interpreter session",
	Long: `Run streams the microphone (and camera snapshots) to the live model
and plays its spoken interpretation through the default output device.
Both sides of the conversation are printed as they finalize.

Press Ctrl-C to end the session.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runSave, "save", "", "write the transcript to a JSONL file on exit")
	runCmd.Flags().BoolVar(&runMute, "mute", false, "start with the microphone muted")
	runCmd.Flags().BoolVar(&runNoVideo, "no-video", false, "start without camera snapshots")
	runCmd.Flags().StringVar(&runModel, "model", "", "override the configured model")
	runCmd.Flags().StringVar(&runVoice, "voice", "", "override the configured voice")
	runCmd.Flags().DurationVar(&runTimeout, "connect-timeout", 15*time.Second, "transport handshake timeout")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runModel != "" {
		cfg.Model = runModel
	}
	if runVoice != "" {
		cfg.Voice = runVoice
	}

	speaker, err := devices.OpenSpeaker()
	if err != nil {
		return err
	}
	defer speaker.Close()

	updates := make(chan struct{}, 1)
	ctrl := session.NewController(session.Config{
		APIKey:            cfg.APIKey,
		Model:             cfg.Model,
		Voice:             cfg.Voice,
		SystemInstruction: cfg.SystemInstruction,
		ConnectTimeout:    runTimeout,
		AcquireMedia:      acquireMedia(cfg),
		Sink:              speaker,
		OnUpdate: func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	})
	ctrl.SetMuted(runMute)
	ctrl.SetVideoEnabled(!runNoVideo)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(styleState.Render("connecting..."))
	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	watchSession(ctx, ctrl, updates)

	ctrl.Stop()
	fmt.Println(styleState.Render("disconnected"))

	turns := ctrl.Turns()
	if runSave != "" {
		if err := saveTranscript(runSave, turns); err != nil {
			return err
		}
		fmt.Println(styleDim.Render(fmt.Sprintf("saved %d turns to %s", len(turns), runSave)))
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// acquireMedia opens fresh capture devices for each session attempt.
func acquireMedia(cfg *config.Config) func(ctx context.Context) (*capture.Pipeline, error) {
	return func(ctx context.Context) (*capture.Pipeline, error) {
		mic, err := devices.OpenMic(cfg.InputRate, capture.DefaultBlockSize)
		if err != nil {
			return nil, err
		}
		var cam capture.VideoSource
		if cfg.VideoDir != "" {
			cam, err = devices.OpenImageDir(cfg.VideoDir)
			if err != nil {
				mic.Close()
				return nil, err
			}
		} else {
			cam = devices.NewTestPattern()
		}
		return capture.New(mic, cam, capture.Config{})
	}
}

// watchSession prints state changes and turns as they finalize, until
// the context is canceled or the session fails.
func watchSession(ctx context.Context, ctrl *session.Controller, updates <-chan struct{}) {
	var (
		printed   int
		lastState session.State = -1
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
		}

		turns := ctrl.Turns()
		for ; printed < len(turns); printed++ {
			printTurn(turns[printed])
		}

		if state := ctrl.State(); state != lastState {
			lastState = state
			switch state {
			case session.Connected:
				fmt.Println(styleState.Render("connected - speak when ready"))
			case session.Errored:
				fmt.Println(styleError.Render("session error: " + ctrl.LastError()))
				return
			case session.Disconnected:
				return
			}
		}
	}
}

func printTurn(turn transcript.Turn) {
	label := styleModel.Render("interpreter")
	switch turn.Role {
	case transcript.RoleUser:
		label = styleUser.Render("you")
	case transcript.RoleSystem:
		label = styleDim.Render("system")
	}
	fmt.Printf("%s %s %s\n",
		styleDim.Render(turn.Time.Format("15:04:05")), label, turn.Text)
}

// saveTranscript writes one JSON turn per line.
func saveTranscript(path string, turns []transcript.Turn) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create transcript file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, turn := range turns {
		if err := enc.Encode(turn); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close transcript file: %w", err)
	}
	slog.Debug("transcript saved", "path", path, "turns", len(turns))
	return nil
}
