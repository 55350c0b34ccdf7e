package searcher

import (
	"sync"
	"sync/atomic"
	"time"

	"yut/battleground"
	"yut/game"
	"yut/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type RolloutOption func(r *Rollout)

// Rollout scores a move by applying it to a copy of the board and playing
// random games out from there. Its Evaluate method is a game.Evaluate.
type Rollout struct {
	info       game.Info
	rules      game.Rules
	goroutines int
	duration   time.Duration
	episodes   int
	cutoff     int
	seed       uint64
	calls      atomic.Uint64
	stats      *stats
}

// episode is the outcome of one play-out.
type episode struct {
	reward   float64
	turns    int
	finished bool
}

func WithDuration(duration time.Duration) RolloutOption {
	return func(r *Rollout) {
		if duration > 0 {
			r.duration = duration
			r.episodes = 0
		}
	}
}

func WithEpisodes(episodes int) RolloutOption {
	return func(r *Rollout) {
		if episodes > 0 {
			r.episodes = episodes
			r.duration = 0
		}
	}
}

// WithCutoff caps the number of turns played per episode.
func WithCutoff(turns int) RolloutOption {
	return func(r *Rollout) {
		if turns > 0 {
			r.cutoff = turns
		}
	}
}

func WithRolloutGoroutines(goroutines int) RolloutOption {
	return func(r *Rollout) {
		if goroutines > 0 {
			r.goroutines = goroutines
		}
	}
}

func WithSeed(seed uint64) RolloutOption {
	return func(r *Rollout) {
		r.seed = seed
	}
}

func WithMetrics() RolloutOption {
	return func(r *Rollout) {
		r.stats = newStats()
	}
}

func NewRollout(info game.Info, rules game.Rules, options ...RolloutOption) *Rollout {
	r := &Rollout{ // Default values
		info:       info,
		rules:      rules,
		goroutines: 1,
		episodes:   50,
		cutoff:     MAX_CUTOFF,
		seed:       1,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Metrics is zero unless the rollout was built WithMetrics.
func (r *Rollout) Metrics() RolloutMetrics {
	return r.stats.snapshot()
}

// Evaluate returns the mean reward of the episodes played after moving from
// along path. A move that wins outright scores WIN without any episode. Boards
// that do not match the roster fall back to game.EvaluateProgress.
func (r *Rollout) Evaluate(from game.Position, path game.MovePath, board []game.Position) float64 {
	r.stats.evaluation()
	mover := from.PlayerID()

	ground, err := battleground.Restore(r.info, r.rules, board)
	if err != nil {
		log.Warn().Msgf("rollout skipped: %v", err)
		return game.EvaluateProgress(from, path, board)
	}
	result, err := ground.Move(from.KnightIDs(), path)
	if err != nil {
		log.Warn().Msgf("rollout skipped: %v", err)
		return game.EvaluateProgress(from, path, board)
	}
	if winner, ok := ground.Winner(); ok {
		return reward(winner, mover)
	}

	after := ground.Positions()
	bonus := r.rules.BonusRolls(len(result.Battles))
	seed := r.seed + r.calls.Add(1)<<20
	return r.run(seed, func(rng *rand.Rand, roller game.Roller) episode {
		return r.playout(after, mover, bonus, rng, roller)
	})
}

// run plays episodes on r.goroutines workers, either a fixed number of them
// or as many as fit in r.duration, and averages their rewards.
func (r *Rollout) run(seed uint64, play func(rng *rand.Rand, roller game.Roller) episode) float64 {
	var (
		mu    sync.Mutex
		total float64
		count int
		wg    sync.WaitGroup
	)

	task := make(chan any, r.episodes)
	for i := 0; i < r.episodes; i++ {
		task <- nil
	}
	close(task)

	done := make(chan any)
	for i := 0; i < r.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + uint64(i)))
			roller := game.NewRandomRoller(seed + uint64(i) + 1<<10)

			var sum float64
			var n int
			defer func() {
				mu.Lock()
				total += sum
				count += n
				mu.Unlock()
			}()

			once := func() {
				e := play(rng, roller)
				sum += e.reward
				n++
				r.stats.episode(e)
			}
			if r.episodes > 0 {
				for range task {
					once()
				}
				return
			}
			for {
				select {
				case <-done:
					return
				default:
					once()
				}
			}
		}()
	}

	if r.episodes <= 0 {
		<-time.After(r.duration)
		close(done)
	}
	wg.Wait()

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// playout plays random turns from board until someone wins or the cutoff is
// reached. The mover keeps the turn when its move earned bonus rolls.
func (r *Rollout) playout(board []game.Position, mover string, bonus int, rng *rand.Rand, roller game.Roller) episode {
	ground, err := battleground.Restore(r.info, r.rules, board)
	if err != nil {
		return episode{}
	}
	players := r.info.PlayerIDs()

	current, rolls := mover, bonus
	if rolls <= 0 {
		current, rolls = next(players, mover), r.rules.InitialRolls()
	}
	for turn := 0; turn < r.cutoff; turn++ {
		if winner, ok := r.turn(ground, current, rolls, rng, roller); ok {
			return episode{reward: reward(winner, mover), turns: turn + 1, finished: true}
		}
		current, rolls = next(players, current), r.rules.InitialRolls()
	}
	return episode{reward: advantage(ground.Positions(), mover), turns: r.cutoff}
}

// turn plays one random turn for playerID: roll the allowance, move one
// random group with every banked outcome, and repeat while battles earn
// bonus rolls.
func (r *Rollout) turn(ground *battleground.Ground, playerID string, rolls int, rng *rand.Rand, roller game.Roller) (string, bool) {
	for rolls > 0 {
		var dice []game.Outcome
		for rolls > 0 {
			o := roller.Roll()
			dice = append(dice, o)
			if !o.IsBonus() {
				rolls--
			}
		}

		var options []Candidate
		for _, p := range ground.PositionsOf(playerID) {
			for _, path := range Suggest(p, dice) {
				options = append(options, Candidate{Position: p, Path: path})
			}
		}
		if len(options) == 0 {
			return "", false
		}
		pick := options[rng.Intn(len(options))] // Random rollout policy
		result, err := ground.Move(pick.Position.KnightIDs(), pick.Path)
		if err != nil {
			return "", false
		}
		if winner, ok := ground.Winner(); ok {
			return winner, true
		}
		rolls = r.rules.BonusRolls(len(result.Battles))
	}
	return "", false
}

func reward(winner, mover string) float64 {
	if winner == mover {
		return WIN
	}
	return LOSS
}

// advantage compares the mover's attacking progress with its best opponent's.
func advantage(positions []game.Position, mover string) float64 {
	walked := make(map[string]int)
	count := make(map[string]int)
	for _, p := range positions {
		for _, k := range p.Knights {
			if k.Defender {
				continue
			}
			walked[k.PlayerID] += game.Distance(game.Attacker, game.Start) - game.Distance(game.Attacker, p.Node)
			count[k.PlayerID]++
		}
	}

	full := float64(game.Distance(game.Attacker, game.Start))
	progress := func(playerID string) float64 {
		if count[playerID] == 0 {
			return 0
		}
		return float64(walked[playerID]) / (full * float64(count[playerID]))
	}

	best := 0.0
	for playerID := range count {
		if playerID != mover {
			best = max(best, progress(playerID))
		}
	}
	return progress(mover) - best
}

func next(players []string, current string) string {
	return players[(utils.FindIndex(players, current)+1)%len(players)]
}
