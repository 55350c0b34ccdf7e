package experiments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yut/communication"
	"yut/engine"
	"yut/events"
	"yut/experiments/metrics"
	"yut/game"
	"yut/gamemaster"
	"yut/meta"
	"yut/player"
	"yut/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config controls a batch of simulated games.
type Config struct {
	Name             string
	Games            int // Per match up
	Parallel         int
	KnightsPerPlayer int
	Defenders        int
	TurnDuration     time.Duration
	BattleExtension  time.Duration
	AckTimeout       time.Duration
	GameTimeout      time.Duration
	Seed             uint64
}

type Result struct {
	Configs []metrics.AgentConfig
	Games   []metrics.GameRecord
	Moves   []metrics.MoveRecord
}

// StrategyConfigs pits every strategy against the greedy baseline.
var StrategyConfigs = []metrics.AgentConfig{
	{ID: 0, Strategy: "greedy", Goroutines: 2},
	{ID: 1, Strategy: "random", Goroutines: 2},
	{ID: 2, Strategy: "softmax", Temperature: 0.05, Goroutines: 2},
	{ID: 3, Strategy: "softmax", Temperature: 0.5, Goroutines: 2},
	{ID: 4, Strategy: "rollout", Episodes: 8, Goroutines: 2},
}

func StrategyMatchUps() [][2]metrics.AgentConfig {
	baseline := StrategyConfigs[0]
	var matchUps [][2]metrics.AgentConfig
	for _, config := range StrategyConfigs[1:] {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return matchUps
}

// NewStrategy builds the strategy an agent config names for a game of info.
func NewStrategy(config metrics.AgentConfig, info game.Info, rules game.Rules, seed uint64) (player.Strategy, error) {
	switch config.Strategy {
	case "greedy":
		return player.Greedy{}, nil
	case "random":
		return player.NewSampler(seed, 0), nil
	case "softmax":
		if config.Temperature <= 0 {
			return nil, fmt.Errorf("softmax needs a positive temperature, got %v", config.Temperature)
		}
		return player.NewSampler(seed, config.Temperature), nil
	case "rollout":
		episodes := config.Episodes
		if episodes <= 0 {
			episodes = meta.EPISODES
		}
		goroutines := config.Goroutines
		if goroutines <= 0 {
			goroutines = meta.GO_ROUTINES
		}
		return player.NewLookahead(searcher.NewRollout(info, rules,
			searcher.WithEpisodes(episodes),
			searcher.WithCutoff(meta.WITH_CUTOFF),
			searcher.WithRolloutGoroutines(goroutines),
			searcher.WithSeed(seed),
		)), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", config.Strategy)
	}
}

// Run plays cfg.Games games per match up, up to cfg.Parallel at a time.
// Records keep the order in which games were scheduled.
func Run(ctx context.Context, cfg Config, matchUps [][2]metrics.AgentConfig) (Result, error) {
	type job struct {
		id      int
		matchUp [2]metrics.AgentConfig
	}
	var jobs []job
	for _, matchUp := range matchUps {
		for range cfg.Games {
			jobs = append(jobs, job{id: len(jobs) + 1, matchUp: matchUp})
		}
	}

	log.Info().Msgf("starting %s experiment with %d games...", cfg.Name, len(jobs))

	games := make([]metrics.GameRecord, len(jobs))
	moves := make([][]metrics.MoveRecord, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Parallel > 0 {
		g.SetLimit(cfg.Parallel)
	}
	for i, j := range jobs {
		g.Go(func() error {
			gameMetric, moveMetrics, err := RunGame(gctx, cfg, j.matchUp, cfg.Seed+uint64(j.id))
			if err != nil {
				return fmt.Errorf("game %d: %w", j.id, err)
			}
			games[i] = metrics.GameRecord{
				ID:         j.id,
				Agent1:     j.matchUp[0].ID,
				Agent2:     j.matchUp[1].ID,
				GameMetric: gameMetric,
			}
			for _, mm := range moveMetrics {
				moves[i] = append(moves[i], metrics.MoveRecord{Game: j.id, MoveMetric: mm})
			}
			log.Info().Msgf("completed game %d of %d with winner: %q", j.id, len(jobs), gameMetric.Winner)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Games: games}
	seen := make(map[int]bool)
	for _, matchUp := range matchUps {
		for _, config := range matchUp {
			if !seen[config.ID] {
				seen[config.ID] = true
				result.Configs = append(result.Configs, config)
			}
		}
	}
	for _, ms := range moves {
		result.Moves = append(result.Moves, ms...)
	}

	log.Info().Msgf("completed %s experiment", cfg.Name)
	return result, nil
}

// RunGame plays one game between two agents. A game still running when
// cfg.GameTimeout elapses is reported without a winner.
func RunGame(ctx context.Context, cfg Config, matchUp [2]metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	info, err := game.NewInfo([]game.Player{{ID: "p1"}, {ID: "p2"}}, cfg.KnightsPerPlayer, cfg.Defenders)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	rules := game.NewStandardRules()
	if cfg.TurnDuration > 0 {
		rules.Duration = cfg.TurnDuration
	}
	if cfg.BattleExtension > 0 {
		rules.Extension = cfg.BattleExtension
	}
	strategies := make([]player.Strategy, len(matchUp))
	for i, config := range matchUp {
		strategies[i], err = NewStrategy(config, info, rules, seed*10+uint64(i))
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
	}

	comm := communication.New(info.PlayerIDs())
	defer comm.Close()
	eng := engine.New(info, game.NewRandomRoller(seed), comm,
		engine.WithRules(rules),
		engine.WithAckTimeout(cfg.AckTimeout),
	)
	gm := gamemaster.New(eng, comm,
		gamemaster.WithTick(max(rules.Duration/4, 10*time.Millisecond)),
		gamemaster.WithSearcher(searcher.New(searcher.WithGoroutines(max(matchUp[0].Goroutines, matchUp[1].Goroutines, 1)))),
	)

	gameCtx := ctx
	if cfg.GameTimeout > 0 {
		var cancel context.CancelFunc
		gameCtx, cancel = context.WithTimeout(ctx, cfg.GameTimeout)
		defer cancel()
	}

	collector := metrics.NewCollector()
	stream, err := comm.Subscribe(gameCtx)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}

	masterCtx, stopMaster := context.WithCancel(gameCtx)
	masterDone := make(chan struct{})
	go func() {
		defer close(masterDone)
		_ = gm.Run(masterCtx)
	}()

	collector.Start()
	g, gctx := errgroup.WithContext(gameCtx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case ev, ok := <-stream:
				if !ok {
					return gctx.Err()
				}
				collector.Observe(ev)
				if ev.Kind() == events.KindGameEnd {
					return nil
				}
			}
		}
	})
	for i, strategy := range strategies {
		p := player.NewPlayer(info.Players[i].ID, strategy, gm)
		g.Go(func() error {
			_, err := p.Play(gctx)
			return err
		})
	}
	err = g.Wait()
	stopMaster()
	<-masterDone

	gameMetric, moveMetrics := collector.Complete()
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		log.Warn().Msgf("game %s cut short after %s", info.GameID, cfg.GameTimeout)
		err = nil
	}
	if gameMetric.GameID == "" {
		gameMetric.GameID = info.GameID
	}
	return gameMetric, moveMetrics, err
}

// Write stores the result as CSV files under root/name and returns the directory.
func Write(root, name string, result Result) (string, error) {
	writer, err := metrics.NewWriter(root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(result.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")
	if err := writer.WriteGameRecords(result.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")
	if err := writer.WriteMoveRecords(result.Moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return writer.Dir(), nil
}
