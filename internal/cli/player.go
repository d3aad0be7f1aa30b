package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/cardsagainstentropy/internal/api/response"
)

func newPlayerCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player registry commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd(st))
	cmd.AddCommand(newPlayerMeCmd(st))
	cmd.AddCommand(newPlayerGetCmd(st))

	return cmd
}

func newPlayerRegisterCmd(st *state) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a display name for the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name}
			var result response.Player

			if err := st.client.Post(cmd.Context(), "/api/v1/players", req, &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerMeCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player

			if err := st.client.Get(cmd.Context(), "/api/v1/players/me", &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerGetCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "get <identity>",
		Short: "Show a player by identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player

			if err := st.client.Get(cmd.Context(), "/api/v1/players/"+args[0], &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}
}
