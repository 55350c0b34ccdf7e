package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"yut/events"
	"yut/game"
)

// AgentConfig describes one automated player in an experiment.
type AgentConfig struct {
	ID          int
	Strategy    string  // greedy, random, softmax or rollout
	Temperature float64 // softmax only
	Episodes    int     // rollout only, per candidate
	Goroutines  int
}

type MoveMetric struct {
	Turn    int    // Turn sequence id
	Player  string // Player ID
	Knights int
	From    game.Node
	To      game.Node
	Steps   int
	Battles int
	Killed  int
	Merged  int
	Path    string
}

type GameMetric struct {
	GameID         string
	StartingPlayer string // Player ID
	Winner         string // Player ID, empty when the game was cut short
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	Turns          int
	Rolls          int
	BonusRolls     int
	TotalMoves     int
	Battles        int
	Kills          int
}

// Collector watches the event stream of one game.
type Collector interface {
	Start()
	Observe(ev events.Event)
	Complete() (GameMetric, []MoveMetric)
}

type collector struct {
	startTime  time.Time
	turns      atomic.Int32
	rolls      atomic.Int32
	bonusRolls atomic.Int32
	battles    atomic.Int32
	kills      atomic.Int32

	mu       sync.Mutex
	gameID   string
	starting string
	winner   string
	turn     game.Turn
	moves    []MoveMetric
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
}

func (m *collector) Observe(ev events.Event) {
	switch ev := ev.(type) {
	case events.GameStart:
		m.mu.Lock()
		m.gameID = ev.Info.GameID
		m.starting = ev.FirstPlayerID
		m.mu.Unlock()
	case events.TurnChange:
		m.turns.Add(1)
		m.setTurn(ev.Turn)
	case events.TurnUpdated:
		m.setTurn(ev.Turn)
	case events.RollResult:
		m.rolls.Add(1)
		if ev.Outcome.IsBonus() {
			m.bonusRolls.Add(1)
		}
	case events.OccupationUpdate:
		m.addMove(ev)
	case events.GameEnd:
		m.mu.Lock()
		m.winner = ev.WinnerID
		m.mu.Unlock()
	}
}

func (m *collector) setTurn(turn game.Turn) {
	m.mu.Lock()
	m.turn = turn
	m.mu.Unlock()
}

func (m *collector) addMove(ev events.OccupationUpdate) {
	if len(ev.Movements) == 0 {
		return
	}
	m.battles.Add(int32(len(ev.Battles)))
	killed := 0
	for _, b := range ev.Battles {
		killed += len(b.Killed)
	}
	m.kills.Add(int32(killed))

	first, last := ev.Movements[0], ev.Movements[len(ev.Movements)-1]
	move := MoveMetric{
		Knights: len(first.Knights),
		From:    first.Step.Start(),
		To:      last.Step.End(),
		Steps:   len(ev.Movements),
		Battles: len(ev.Battles),
		Killed:  killed,
	}
	for _, mv := range ev.Movements {
		move.Merged += len(mv.MergedWith)
	}
	move.Path = game.MovePath{Steps: stepsOf(ev.Movements)}.String()
	if len(first.Knights) > 0 {
		move.Player = first.Knights[0].PlayerID
	}

	m.mu.Lock()
	move.Turn = m.turn.Seq
	m.moves = append(m.moves, move)
	m.mu.Unlock()
}

func stepsOf(movements []game.Movement) []game.MoveStep {
	steps := make([]game.MoveStep, len(movements))
	for i, mv := range movements {
		steps[i] = mv.Step
	}
	return steps
}

func (m *collector) Complete() (GameMetric, []MoveMetric) {
	m.mu.Lock()
	defer m.mu.Unlock()

	end := time.Now()
	metric := GameMetric{
		GameID:         m.gameID,
		StartingPlayer: m.starting,
		Winner:         m.winner,
		StartTime:      m.startTime,
		EndTime:        end,
		Duration:       end.Sub(m.startTime),
		Turns:          int(m.turns.Load()),
		Rolls:          int(m.rolls.Load()),
		BonusRolls:     int(m.bonusRolls.Load()),
		TotalMoves:     len(m.moves),
		Battles:        int(m.battles.Load()),
		Kills:          int(m.kills.Load()),
	}
	moves := make([]MoveMetric, len(m.moves))
	copy(moves, m.moves)
	return metric, moves
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                               {}
func (m *dummyCollector) Observe(ev events.Event)              {}
func (m *dummyCollector) Complete() (GameMetric, []MoveMetric) { return GameMetric{}, nil }
