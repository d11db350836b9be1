package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "signbridge",
	Short: "Real-time interpreter over the Gemini Live API",
	Long: `signbridge - stream your microphone and camera to the Gemini Live
API and hear a spoken interpretation in real time, with a running
transcript of both sides of the conversation.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/signbridge/config.yaml
  Linux:   ~/.config/signbridge/config.yaml
  Windows: %AppData%/signbridge/config.yaml

The API key can also be supplied via the GEMINI_API_KEY environment
variable.

Examples:
  # Run a session and save the transcript
  signbridge run --save session.jsonl

  # Audio-only session
  signbridge run --no-video

  # Summarize a saved transcript
  signbridge summarize session.jsonl`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: OS config dir)")
}
