package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"yut/experiments"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	simulateName  string
	simulateGames int
	simulateOut   string
	dryRun        bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play automated games between strategies and store the results as CSV",
	Long: `Simulate plays every strategy against the greedy baseline. Each game runs
the full engine, broadcaster and game master with automated players.

Examples:
  yut simulate --games 20
  YUT_ACK_TIMEOUT=100ms yut simulate --name acked`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return simulate(ctx)
	},
}

func simulate(ctx context.Context) error {
	games := cfg.Games
	if simulateGames > 0 {
		games = simulateGames
	}
	out := cfg.OutDir
	if simulateOut != "" {
		out = simulateOut
	}

	result, err := experiments.Run(ctx, experiments.Config{
		Name:             simulateName,
		Games:            games,
		Parallel:         cfg.Parallel,
		KnightsPerPlayer: cfg.KnightsPerPlayer,
		Defenders:        cfg.Defenders,
		TurnDuration:     cfg.TurnDuration,
		BattleExtension:  cfg.BattleExtension,
		AckTimeout:       cfg.AckTimeout,
		GameTimeout:      cfg.GameTimeout,
		Seed:             cfg.Seed,
	}, experiments.StrategyMatchUps())
	if err != nil {
		return err
	}

	wins := make(map[int]int)
	for _, g := range result.Games {
		switch g.Winner {
		case "p1":
			wins[g.Agent1]++
		case "p2":
			wins[g.Agent2]++
		}
	}
	for _, config := range result.Configs {
		log.Info().Msgf("agent %d (%s %.2f): %d wins", config.ID, config.Strategy, config.Temperature, wins[config.ID])
	}

	if dryRun {
		return nil
	}
	dir, err := experiments.Write(out, simulateName, result)
	if err != nil {
		return err
	}
	log.Info().Msgf("results written to %s", dir)
	return nil
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateName, "name", "strategies", "Experiment name, used as the output folder")
	simulateCmd.Flags().IntVarP(&simulateGames, "games", "g", 0, "Games per match up (overrides YUT_GAMES)")
	simulateCmd.Flags().StringVarP(&simulateOut, "out", "o", "", "Output directory (overrides YUT_OUT_DIR)")
	simulateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip writing CSV files")
}
