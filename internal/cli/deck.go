package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardsagainstentropy/internal/api/response"
)

func newDeckCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Inspect the question and answer decks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "list <question|answer>",
		Short:     "List every card in a deck",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"question", "answer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Deck
			if err := st.client.Get(cmd.Context(), "/api/v1/decks/"+args[0], &result); err != nil {
				return err
			}
			st.out(cmd).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <question|answer> <index>",
		Short: "Show one card; indexes wrap around the deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("index must be a non-negative integer: %q", args[1])
			}

			var result response.DeckEntry
			if err := st.client.Get(cmd.Context(), fmt.Sprintf("/api/v1/decks/%s/%d", args[0], index), &result); err != nil {
				return err
			}
			st.out(cmd).Print(result)
			return nil
		},
	})

	return cmd
}
