package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidRoster = errors.New("invalid roster")

type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// Info is the static configuration of one game.
type Info struct {
	GameID  string              `json:"game_id"`
	Players []Player            `json:"players"`
	Knights map[string][]Knight `json:"knights"` // by player id
}

// NewInfo creates knights for every player. The last defenders knights of
// each player are flagged as defenders.
func NewInfo(players []Player, knightsPerPlayer, defenders int) (Info, error) {
	if len(players) < 2 {
		return Info{}, fmt.Errorf("%w: need at least two players, got %d", ErrInvalidRoster, len(players))
	}
	if knightsPerPlayer <= defenders || defenders < 0 {
		return Info{}, fmt.Errorf("%w: %d knights with %d defenders", ErrInvalidRoster, knightsPerPlayer, defenders)
	}
	info := Info{
		GameID:  uuid.NewString(),
		Players: players,
		Knights: make(map[string][]Knight, len(players)),
	}
	for _, p := range players {
		if p.ID == "" {
			return Info{}, fmt.Errorf("%w: empty player id", ErrInvalidRoster)
		}
		if _, dup := info.Knights[p.ID]; dup {
			return Info{}, fmt.Errorf("%w: duplicate player %s", ErrInvalidRoster, p.ID)
		}
		knights := make([]Knight, knightsPerPlayer)
		for i := range knights {
			knights[i] = Knight{
				ID:       uuid.NewString(),
				PlayerID: p.ID,
				Defender: i >= knightsPerPlayer-defenders,
			}
		}
		info.Knights[p.ID] = knights
	}
	return info, nil
}

// AllKnights lists every knight in player order.
func (i Info) AllKnights() []Knight {
	var all []Knight
	for _, p := range i.Players {
		all = append(all, i.Knights[p.ID]...)
	}
	return all
}

func (i Info) HasPlayer(playerID string) bool {
	_, ok := i.Knights[playerID]
	return ok
}

func (i Info) PlayerIDs() []string {
	ids := make([]string, len(i.Players))
	for n, p := range i.Players {
		ids[n] = p.ID
	}
	return ids
}
