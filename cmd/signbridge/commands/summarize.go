package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/openinterp/signbridge/cmd/signbridge/internal/config"
	"github.com/openinterp/signbridge/pkg/transcript"
)

var summarizeModel string

var summarizeCmd = &cobra.Command{
	Use:   "summarize <transcript.jsonl>",
	Short: "Summarize a saved transcript",
	Long: `Summarize reads a transcript saved with 'run --save' and asks a text
model for a short summary of the conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeModel, "model", "gemini-2.0-flash", "text model to use")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is not configured (set %s or api_key in the config file)", config.EnvAPIKey)
	}

	turns, err := loadTranscript(args[0])
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return fmt.Errorf("transcript %s has no turns", args[0])
	}

	ctx := cmd.Context()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return fmt.Errorf("genai client: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Summarize this interpreted conversation in a few sentences. ")
	sb.WriteString("Note the main topics and anything the interpreter flagged.\n\n")
	for _, turn := range turns {
		fmt.Fprintf(&sb, "[%s] %s\n", turn.Role, turn.Text)
	}

	resp, err := client.Models.GenerateContent(ctx, summarizeModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: sb.String()}}, Role: "user"},
	}, nil)
	if err != nil {
		return fmt.Errorf("genai generate: %w", err)
	}

	var out strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			out.WriteString(part.Text)
		}
	}
	if out.Len() == 0 {
		return fmt.Errorf("model returned no text")
	}
	fmt.Println(strings.TrimSpace(out.String()))
	return nil
}

// loadTranscript reads one JSON turn per line, as written by run --save.
func loadTranscript(path string) ([]transcript.Turn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var turns []transcript.Turn
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var turn transcript.Turn
		if err := json.Unmarshal([]byte(line), &turn); err != nil {
			return nil, fmt.Errorf("parse transcript line: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return turns, nil
}
