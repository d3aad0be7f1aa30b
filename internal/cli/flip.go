package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/cardsagainstentropy/internal/api/response"
	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/dependencies/random"
	"github.com/mcoot/cardsagainstentropy/internal/entropy"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/services/randomness"
)

// FlipTicket is a requested flip plus the secret needed to reveal it.
// The secret never leaves this machine until the reveal.
type FlipTicket struct {
	Flip   response.Flip `json:"flip"`
	Secret string        `json:"secret"`
}

func newFlipCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flip",
		Short: "Commit-reveal randomness commands",
		Long: `Drive the commit-reveal randomness flow from this machine.

  caegame flip request              commit to a fresh local secret
  caegame flip reveal <seq> --secret <hex>
  caegame flip draw                 request, wait for the provider and reveal

A revealed flip can seed a game with "caegame game start <id> --seq <seq>".`,
	}

	cmd.AddCommand(newFlipFeeCmd(st))
	cmd.AddCommand(newFlipRequestCmd(st))
	cmd.AddCommand(newFlipRevealCmd(st))
	cmd.AddCommand(newFlipGetCmd(st))
	cmd.AddCommand(newFlipDrawCmd(st))

	return cmd
}

func newFlipFeeCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "fee",
		Short: "Show the current flip fee",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.FlipFee

			if err := st.client.Get(cmd.Context(), "/api/v1/flips/fee", &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}
}

func newFlipRequestCmd(st *state) *cobra.Command {
	var fee int64

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Commit to a fresh secret and request a flip",
		RunE: func(cmd *cobra.Command, args []string) error {
			ticket, err := st.requestFlip(cmd.Context(), fee)
			if err != nil {
				return err
			}

			st.out(cmd).Print(ticket)
			return nil
		},
	}

	cmd.Flags().Int64Var(&fee, "fee", -1, "Fee to pay; defaults to the server's current fee")

	return cmd
}

func newFlipRevealCmd(st *state) *cobra.Command {
	var secretHex, providerHex string

	cmd := &cobra.Command{
		Use:   "reveal <seq>",
		Short: "Reveal a flip's secret alongside the provider's value",
		Long: `Reveal a flip. Without --provider-value the provider's value is
fetched from the entropy provider, retrying while it is not ready.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(args[0])
			if err != nil {
				return err
			}
			secret, err := model.ParseBytes32(secretHex)
			if err != nil {
				return fmt.Errorf("secret: %w", err)
			}

			var providerValue model.Bytes32
			if providerHex != "" {
				if providerValue, err = model.ParseBytes32(providerHex); err != nil {
					return fmt.Errorf("provider value: %w", err)
				}
			} else {
				if providerValue, err = st.fetcher(cmd).Fetch(cmd.Context(), seq); err != nil {
					return err
				}
			}

			seed, err := st.revealFlip(cmd.Context(), seq, secret, providerValue)
			if err != nil {
				return err
			}

			st.out(cmd).Print(seed)
			return nil
		},
	}

	cmd.Flags().StringVar(&secretHex, "secret", "", "Secret returned by flip request (required)")
	cmd.Flags().StringVar(&providerHex, "provider-value", "", "Provider value, if already known")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newFlipGetCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "get <seq>",
		Short: "Show a flip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(args[0])
			if err != nil {
				return err
			}

			var result response.Flip
			if err := st.client.Get(cmd.Context(), fmt.Sprintf("/api/v1/flips/%d", seq), &result); err != nil {
				return err
			}

			st.out(cmd).Print(result)
			return nil
		},
	}
}

func newFlipDrawCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "draw",
		Short: "Request, fetch and reveal a flip in one go",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ticket, err := st.requestFlip(ctx, -1)
			if err != nil {
				return err
			}
			seq := model.SequenceNumber(ticket.Flip.SequenceNumber)
			secret, err := model.ParseBytes32(ticket.Secret)
			if err != nil {
				return err
			}

			providerValue, err := st.fetcher(cmd).Fetch(ctx, seq)
			if err != nil {
				return fmt.Errorf("flip %d: %w", seq, err)
			}

			seed, err := st.revealFlip(ctx, seq, secret, providerValue)
			if err != nil {
				return fmt.Errorf("flip %d: %w", seq, err)
			}

			st.out(cmd).Print(seed)
			return nil
		},
	}
}

// requestFlip commits to a fresh secret. A negative fee pays the current fee.
func (s *state) requestFlip(ctx context.Context, fee int64) (FlipTicket, error) {
	if fee < 0 {
		var current response.FlipFee
		if err := s.client.Get(ctx, "/api/v1/flips/fee", &current); err != nil {
			return FlipTicket{}, err
		}
		fee = int64(current.Fee)
	}

	secret := random.Bytes32(random.New())

	req := map[string]any{
		"commitment": entropy.Commit(secret).Hex(),
		"fee":        fee,
	}
	var flip response.Flip
	if err := s.client.Post(ctx, "/api/v1/flips", req, &flip); err != nil {
		return FlipTicket{}, err
	}

	return FlipTicket{Flip: flip, Secret: secret.Hex()}, nil
}

func (s *state) revealFlip(ctx context.Context, seq model.SequenceNumber, secret, providerValue model.Bytes32) (response.Seed, error) {
	req := map[string]string{
		"secret":         secret.Hex(),
		"provider_value": providerValue.Hex(),
	}
	var seed response.Seed
	err := s.client.Post(ctx, fmt.Sprintf("/api/v1/flips/%d/reveal", seq), req, &seed)
	return seed, err
}

// fetcher polls the entropy provider directly, the same way the server does
func (s *state) fetcher(cmd *cobra.Command) *randomness.Fetcher {
	level := slog.LevelWarn
	if s.cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	provider := entropy.NewClient(s.cfg.ProviderURL(), s.cfg.EntropyChain, nil)
	return randomness.NewFetcher(provider, clock.New(), randomness.DefaultFetchConfig(), logger)
}

func parseSequence(s string) (model.SequenceNumber, error) {
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sequence number must be a non-negative integer: %q", s)
	}
	return model.SequenceNumber(seq), nil
}
