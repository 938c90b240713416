package combat

import "fmt"

// BattleState holds the roster and flags of one encounter.
//
// Invariant: every id in Order is a key of Players and vice versa.
// BattleState is not safe for concurrent use; it is mutated only by the
// scheduler loop that owns the encounter.
type BattleState struct {
	Players map[int]*Combatant
	// Order is the insertion order of player ids; it is the tie-break order everywhere.
	Order    []int
	Enemy    *Combatant
	Paused   bool
	InBattle bool
}

// NewBattleState builds a state from an enemy and an ordered party.
//
// Precondition: enemy must be non-nil; player ids must be unique.
// Postcondition: Returns a state with InBattle false, or an error on a duplicate id.
func NewBattleState(enemy *Combatant, players []*Combatant) (*BattleState, error) {
	s := &BattleState{
		Players: make(map[int]*Combatant, len(players)),
		Enemy:   enemy,
	}
	for _, p := range players {
		if err := s.AddPlayer(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddPlayer appends p to the roster.
//
// Precondition: p must be non-nil.
// Postcondition: Returns an error if p.ID is already present.
func (s *BattleState) AddPlayer(p *Combatant) error {
	if s.Players == nil {
		s.Players = make(map[int]*Combatant)
	}
	if _, dup := s.Players[p.ID]; dup {
		return fmt.Errorf("player id %d already in battle", p.ID)
	}
	s.Players[p.ID] = p
	s.Order = append(s.Order, p.ID)
	return nil
}

// Player returns the player with id, or (nil, false).
func (s *BattleState) Player(id int) (*Combatant, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// PlayerList returns the players in insertion order.
func (s *BattleState) PlayerList() []*Combatant {
	out := make([]*Combatant, 0, len(s.Order))
	for _, id := range s.Order {
		out = append(out, s.Players[id])
	}
	return out
}

// LivingPlayers returns players with HP > 0 in insertion order.
func (s *BattleState) LivingPlayers() []*Combatant {
	var out []*Combatant
	for _, id := range s.Order {
		if p := s.Players[id]; !p.IsIncapacitated() {
			out = append(out, p)
		}
	}
	return out
}

// HasLivingPlayers reports whether any player has HP > 0.
func (s *BattleState) HasLivingPlayers() bool {
	for _, p := range s.Players {
		if !p.IsIncapacitated() {
			return true
		}
	}
	return false
}

// IsEnemy reports whether c is the encounter's enemy.
func (s *BattleState) IsEnemy(c *Combatant) bool { return c != nil && c == s.Enemy }

// Outcome is the result of a termination check.
type Outcome int

const (
	// Ongoing means neither side has been wiped out.
	Ongoing Outcome = iota
	Victory
	Defeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// CheckOutcome evaluates the termination rule. A full party wipe is a defeat even
// when the enemy fell in the same resolution.
//
// Postcondition: Victory iff enemy HP <= 0 and some player HP > 0;
// Defeat iff no player has HP > 0.
func (s *BattleState) CheckOutcome() Outcome {
	if !s.HasLivingPlayers() {
		return Defeat
	}
	if s.Enemy != nil && s.Enemy.IsIncapacitated() {
		return Victory
	}
	return Ongoing
}
