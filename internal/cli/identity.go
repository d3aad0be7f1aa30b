package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardsagainstentropy/internal/api/response"
)

func newIdentityCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Identity and session commands",
	}

	cmd.AddCommand(newIdentityCreateCmd(st))
	cmd.AddCommand(newIdentityLoginCmd(st))
	cmd.AddCommand(newIdentityLogoutCmd(st))

	return cmd
}

func newIdentityCreateCmd(st *state) *cobra.Command {
	var passphrase string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new identity and log in as it",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"passphrase": passphrase}
			var result response.Session

			if err := st.client.Post(cmd.Context(), "/api/v1/identities", req, &result); err != nil {
				return err
			}

			if err := st.cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			st.out(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase protecting the identity (required)")
	_ = cmd.MarkFlagRequired("passphrase")

	return cmd
}

func newIdentityLoginCmd(st *state) *cobra.Command {
	var identity, passphrase string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an existing identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"identity":   identity,
				"passphrase": passphrase,
			}
			var result response.Session

			if err := st.client.Post(cmd.Context(), "/api/v1/sessions", req, &result); err != nil {
				return err
			}

			if err := st.cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			st.out(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Identity (required)")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase (required)")
	_ = cmd.MarkFlagRequired("identity")
	_ = cmd.MarkFlagRequired("passphrase")

	return cmd
}

func newIdentityLogoutCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.client.Delete(cmd.Context(), "/api/v1/sessions/current"); err != nil {
				return err
			}
			if err := st.cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			st.out(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}
