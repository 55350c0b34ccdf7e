package game

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/rand"
)

// Outcome is the result of one throw of the four sticks.
type Outcome int

const (
	Do Outcome = iota + 1
	BackDo
	Gae
	Geol
	Yut
	Mo
)

var ErrUnknownOutcome = errors.New("unknown dice outcome")

var outcomeNames = map[Outcome]string{
	Do:     "do",
	BackDo: "backdo",
	Gae:    "gae",
	Geol:   "geol",
	Yut:    "yut",
	Mo:     "mo",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Steps is the signed number of cells the outcome moves.
func (o Outcome) Steps() int {
	switch o {
	case Do:
		return 1
	case BackDo:
		return -1
	case Gae:
		return 2
	case Geol:
		return 3
	case Yut:
		return 4
	case Mo:
		return 5
	default:
		return 0
	}
}

func (o Outcome) IsBackward() bool {
	return o == BackDo
}

// IsBonus reports whether the outcome grants another throw.
func (o Outcome) IsBonus() bool {
	return o == Yut || o == Mo
}

func (o Outcome) MarshalText() ([]byte, error) {
	name, ok := outcomeNames[o]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutcome, int(o))
	}
	return []byte(name), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*o = outcome
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOutcome, text)
}

// FromSticks maps four thrown sticks to an outcome. Stick 0 carries the back
// mark: when it is the only one lying closed the throw is a BackDo.
func FromSticks(sticks [4]bool) Outcome {
	open := 0
	for _, s := range sticks {
		if s {
			open++
		}
	}
	switch open {
	case 0:
		return Mo
	case 1:
		return Geol
	case 2:
		return Gae
	case 3:
		if !sticks[0] {
			return BackDo
		}
		return Do
	default:
		return Yut
	}
}

// Roller produces dice outcomes.
type Roller interface {
	Roll() Outcome
}

// RandomRoller throws four fair sticks.
type RandomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomRoller(seed uint64) *RandomRoller {
	return &RandomRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomRoller) Roll() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sticks [4]bool
	for i := range sticks {
		sticks[i] = r.rng.Intn(2) == 1
	}
	return FromSticks(sticks)
}

// ScriptedRoller replays a fixed sequence of outcomes, wrapping around at the end.
type ScriptedRoller struct {
	mu       sync.Mutex
	outcomes []Outcome
	next     int
}

func NewScriptedRoller(outcomes ...Outcome) *ScriptedRoller {
	if len(outcomes) == 0 {
		panic("scripted roller needs at least one outcome")
	}
	return &ScriptedRoller{outcomes: outcomes}
}

func (r *ScriptedRoller) Roll() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.outcomes[r.next%len(r.outcomes)]
	r.next++
	return o
}
