package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("unknown event kind")

// Encode serialises the payload of an event. The kind travels separately.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Kind(), err)
	}
	return data, nil
}

// Decode rebuilds an event of the given kind from its payload.
func Decode(kind Kind, data []byte) (Event, error) {
	var ev Event
	var err error
	switch kind {
	case KindPlayerPresenceChanged:
		ev, err = decode[PlayerPresenceChanged](data)
	case KindGameStart:
		ev, err = decode[GameStart](data)
	case KindTurnChange:
		ev, err = decode[TurnChange](data)
	case KindRollResult:
		ev, err = decode[RollResult](data)
	case KindOccupationUpdate:
		ev, err = decode[OccupationUpdate](data)
	case KindTurnUpdated:
		ev, err = decode[TurnUpdated](data)
	case KindGameQuit:
		ev, err = decode[GameQuit](data)
	case KindGameEnd:
		ev, err = decode[GameEnd](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return ev, nil
}

func decode[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
