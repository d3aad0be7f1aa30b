package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// state is shared by every command of one root command instance
type state struct {
	cfg    *Config
	client *Client
}

func (s *state) out(cmd *cobra.Command) *Output {
	return NewOutput(s.cfg.Output, cmd.OutOrStdout())
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg, cfgErr := LoadConfig()
	if cfg == nil {
		cfg = &Config{}
	}
	st := &state{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "caegame",
		Short: "CLI tool for the Cards Against Entropy API",
		Long: `caegame is a CLI tool for interacting with the Cards Against Entropy JSON API.

It covers identities, player registration, lobbies, game actions, the
commit-reveal randomness flow and real-time event streaming.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			switch cfg.Output {
			case "text", "json":
			default:
				return fmt.Errorf("unknown output format %q", cfg.Output)
			}

			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			st.client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CAEGAME_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: CAEGAME_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: CAEGAME_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.EntropyURL, "entropy-url", cfg.EntropyURL, "Entropy provider URL, defaults to <server>/entropy (env: CAEGAME_ENTROPY_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.EntropyChain, "entropy-chain", cfg.EntropyChain, "Entropy provider chain (env: CAEGAME_ENTROPY_CHAIN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newIdentityCmd(st))
	rootCmd.AddCommand(newPlayerCmd(st))
	rootCmd.AddCommand(newGameCmd(st))
	rootCmd.AddCommand(newFlipCmd(st))
	rootCmd.AddCommand(newDeckCmd(st))
	rootCmd.AddCommand(newEventsCmd(st))
	rootCmd.AddCommand(newHealthCmd(st))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
