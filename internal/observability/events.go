package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/evolution/internal/game/battle"
)

// EventFields returns the log fields describing ev. Only the fields relevant to the
// event type are included.
func EventFields(ev battle.Event) []zap.Field {
	fields := []zap.Field{
		zap.Stringer("event", ev.Type),
		zap.String("battle_id", ev.BattleID.String()),
	}
	switch ev.Type {
	case battle.EventPlayerReady, battle.EventAbilityClosed:
		fields = append(fields, zap.Int("combatant", ev.CombatantID))
	case battle.EventAbilityRequested:
		fields = append(fields,
			zap.Int("combatant", ev.CombatantID),
			zap.Strings("abilities", ev.Abilities),
		)
	case battle.EventBattleEnded:
		fields = append(fields,
			zap.Bool("victory", ev.Victory),
			zap.Bool("aborted", ev.Aborted),
		)
	}
	return fields
}

// EventLogger returns a battle.Listener that writes every event to logger.
// State changes fire every heartbeat and are logged at Debug; the rest at Info.
func EventLogger(logger *zap.Logger) battle.Listener {
	return func(ev battle.Event) {
		level := zapcore.InfoLevel
		if ev.Type == battle.EventStateChanged {
			level = zapcore.DebugLevel
		}
		if ce := logger.Check(level, "battle event"); ce != nil {
			ce.Write(EventFields(ev)...)
		}
	}
}
