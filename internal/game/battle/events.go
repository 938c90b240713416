package battle

import (
	"sync"

	"github.com/google/uuid"
)

// EventType identifies the kind of notification a battle emits.
type EventType int

const (
	// EventPlayerReady fires when a player's gauge crosses its threshold.
	EventPlayerReady EventType = iota
	// EventEnemyReady fires when the enemy's gauge crosses its threshold.
	EventEnemyReady
	// EventStateChanged is the coarse UI refresh signal.
	EventStateChanged
	// EventAbilityRequested asks the external decision source for a player's ability.
	EventAbilityRequested
	// EventAbilityClosed withdraws an open ability request.
	EventAbilityClosed
	// EventBattleEnded is emitted exactly once per battle.
	EventBattleEnded
)

// String returns a short label for log lines.
func (t EventType) String() string {
	switch t {
	case EventPlayerReady:
		return "player_ready"
	case EventEnemyReady:
		return "enemy_ready"
	case EventStateChanged:
		return "state_changed"
	case EventAbilityRequested:
		return "ability_requested"
	case EventAbilityClosed:
		return "ability_closed"
	case EventBattleEnded:
		return "battle_ended"
	default:
		return "unknown"
	}
}

// Event is a notification emitted by a Battle. Only the fields relevant to Type are set.
type Event struct {
	Type     EventType
	BattleID uuid.UUID
	// CombatantID is set for EventPlayerReady, EventAbilityRequested and EventAbilityClosed.
	CombatantID int
	// Abilities lists the names the acting player may choose, in ability order.
	Abilities []string
	// Victory and Aborted are set for EventBattleEnded.
	Victory bool
	Aborted bool
}

// Listener observes battle events. Listeners run synchronously on the battle loop
// and must not block on the battle they observe.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Bus fans events out to listeners in registration order.
// Subscribe and unsubscribe are safe for concurrent use.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

// Subscribe registers l and returns a func that removes it.
//
// Precondition: l must be non-nil.
// Postcondition: the returned func is idempotent.
func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: l})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers e to every listener registered at the time of the call.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(e)
	}
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
