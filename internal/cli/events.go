package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd(st *state) *cobra.Command {
	var jsonOutput bool
	var gameID string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream SSE events",
		Long: `Connect to the server's SSE endpoint and stream events in real-time.
With --game only that game's events are shown.

Events include:
  - player_registered: A player registered a display name
  - game_created: A new game was created
  - player_joined_game: A player took a seat
  - game_started: The game was seeded and dealt
  - card_played: The active player played an answer card
  - card_judged: The judge picked a winner for the round
  - game_ended: The last card was judged
  - game_restarted: An operator reset the game
  - flip_requested: A randomness flip was committed
  - flip_revealed: A flip's seed was revealed

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/events"
			if gameID != "" {
				p, err := gamePath(gameID, "events")
				if err != nil {
					return err
				}
				path = p
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return st.streamEvents(ctx, cmd.OutOrStdout(), path, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&gameID, "game", "", "Only stream events for this game")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func (s *state) streamEvents(ctx context.Context, w io.Writer, path string, jsonOutput bool) error {
	url := strings.TrimSuffix(s.cfg.ServerURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	// No timeout for SSE; the context ends the stream
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to %s\n", path)
	}

	err = readSSE(resp.Body, func(e SSEEvent) {
		e.Time = time.Now()
		printEvent(w, e, jsonOutput)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

// readSSE parses an event stream, calling fn once per complete event
func readSSE(r io.Reader, fn func(SSEEvent)) error {
	scanner := bufio.NewScanner(r)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				fn(SSEEvent{Event: currentEvent, Data: strings.Join(dataLines, "\n")})
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	return scanner.Err()
}

func printEvent(w io.Writer, e SSEEvent, jsonOutput bool) {
	if jsonOutput {
		jsonData, _ := json.Marshal(e)
		fmt.Fprintln(w, string(jsonData))
		return
	}

	// Keep each event on one display line
	displayData := strings.ReplaceAll(e.Data, "\n", " ")
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Event, displayData)
}
