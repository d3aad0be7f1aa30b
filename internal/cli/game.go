package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardsagainstentropy/internal/api/handler"
	"github.com/mcoot/cardsagainstentropy/internal/api/response"
)

func newGameCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Lobby and game commands",
	}

	cmd.AddCommand(newGameCreateCmd(st))
	cmd.AddCommand(newGameListCmd(st))
	cmd.AddCommand(newGameGetCmd(st))
	cmd.AddCommand(newGameJoinCmd(st))
	cmd.AddCommand(newGameStartCmd(st))
	cmd.AddCommand(newGamePlayCmd(st))
	cmd.AddCommand(newGameJudgeCmd(st))
	cmd.AddCommand(newGameHandCmd(st))
	cmd.AddCommand(newGameRestartCmd(st))

	return cmd
}

func gamePath(id string, action string) (string, error) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("game id must be a non-negative integer: %q", id)
	}
	path := "/api/v1/games/" + id
	if action != "" {
		path += "/" + action
	}
	return path, nil
}

func newGameCreateCmd(st *state) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game and take the first seat",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameState

			if err := st.client.Post(cmd.Context(), "/api/v1/games", map[string]string{"name": name}, &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Game name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newGameListCmd(st *state) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.GameSummary

			path := "/api/v1/games?status=" + url.QueryEscape(status)
			if err := st.client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "pending", "Status filter: pending, active, ended")

	return cmd
}

func newGameGetCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "")
			if err != nil {
				return err
			}

			var result response.GameState
			if err := st.client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}
}

func newGameJoinCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "join <id>",
		Short: "Take a seat in a pending game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.gameAction(cmd, args[0], "join", nil)
		},
	}
}

func newGameStartCmd(st *state) *cobra.Command {
	var seq uint64

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a full game",
		Long: `Start a full game. Without --seq the server draws a fresh seed itself.
With --seq the game is seeded from a flip you requested and revealed
earlier (see "caegame flip").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if cmd.Flags().Changed("seq") {
				body = map[string]uint64{"sequence_number": seq}
			}
			return st.gameAction(cmd, args[0], "start", body)
		},
	}

	cmd.Flags().Uint64Var(&seq, "seq", 0, "Sequence number of a revealed flip to seed the game with")

	return cmd
}

func newGamePlayCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "play <id> <card-index>",
		Short: "Play an answer card (active player only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("card index must be an integer: %w", err)
			}
			return st.gameAction(cmd, args[0], "play", map[string]int{"card_index": index})
		},
	}
}

func newGameJudgeCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "judge <id> <pick>",
		Short: "Pick the winning card by its position in play order (judge only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pick, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("pick must be an integer: %w", err)
			}
			return st.gameAction(cmd, args[0], "judge", map[string]int{"player_index": pick})
		},
	}
}

func newGameHandCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "hand <id>",
		Short: "Show your hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "hand")
			if err != nil {
				return err
			}

			var result response.Hand
			if err := st.client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}
}

func newGameRestartCmd(st *state) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "restart <id>",
		Short: "Reset a game back to its lobby (operator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "restart")
			if err != nil {
				return err
			}

			var result response.GameState
			headers := map[string]string{handler.MaintenanceTokenHeader: token}
			if err := st.client.Do(cmd.Context(), http.MethodPost, path, nil, &result, headers); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "maintenance-token", "", "Operator maintenance token (required)")
	_ = cmd.MarkFlagRequired("maintenance-token")

	return cmd
}

// gameAction posts to a game action endpoint and prints the resulting state
func (s *state) gameAction(cmd *cobra.Command, id, action string, body any) error {
	path, err := gamePath(id, action)
	if err != nil {
		return err
	}

	var result response.GameState
	if err := s.client.Post(cmd.Context(), path, body, &result); err != nil {
		return err
	}

	s.out(cmd).Print(result)
	return nil
}
