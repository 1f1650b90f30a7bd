package events

import (
	"log/slog"
	"time"
)

// ApplicationLogger logs irrigation and fertilizer applications as they are signalled.
type ApplicationLogger struct {
	logger *slog.Logger
}

// NewApplicationLogger subscribes a logger to the irrigation and NPK signals on bus.
func NewApplicationLogger(bus *Bus, logger *slog.Logger) *ApplicationLogger {
	a := &ApplicationLogger{logger: logger}
	bus.Subscribe(SignalNPKApplication, a.onNPKApplication)
	bus.Subscribe(SignalIrrigate, a.onIrrigate)
	return a
}

func (a *ApplicationLogger) onNPKApplication(ev Event) {
	amount, ok := ev.Payload.(NPKApplication)
	if !ok {
		a.logger.Warn("unexpected payload", "signal", ev.Signal)
		return
	}
	a.logger.Info("NPK fertilizer applied",
		"day", ev.Day.Format(time.DateOnly),
		"n", amount.N,
		"p", amount.P,
		"k", amount.K,
	)
}

func (a *ApplicationLogger) onIrrigate(ev Event) {
	irr, ok := ev.Payload.(Irrigation)
	if !ok {
		a.logger.Warn("unexpected payload", "signal", ev.Signal)
		return
	}
	a.logger.Info("irrigation applied",
		"day", ev.Day.Format(time.DateOnly),
		"amount_cm", irr.Amount,
	)
}
