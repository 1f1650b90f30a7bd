// Package events dispatches simulation signals to registered handlers.
//
// Handlers run synchronously on the publishing goroutine, in the order they
// were subscribed. A handler may publish further events; those are dispatched
// before the outer Publish returns.
package events

import (
	"sync"
	"time"
)

// Signal names a topic on the bus.
type Signal string

const (
	SignalIrrigate       Signal = "irrigate"
	SignalNPKApplication Signal = "npk_application"
	SignalCropStart      Signal = "crop_start"
	SignalCropFinish     Signal = "crop_finish"
	SignalTerminate      Signal = "terminate"
	SignalWeatherReady   Signal = "weather_ready"
)

// Event is one published signal. Payload carries the signal-specific data, for
// example Irrigation for SignalIrrigate.
type Event struct {
	Signal  Signal
	Day     time.Time
	Payload any
}

// Handler receives events for the signals it subscribed to.
type Handler func(Event)

// Irrigation is the payload of SignalIrrigate. Amount is in cm.
type Irrigation struct {
	Amount float64
}

// NPKApplication is the payload of SignalNPKApplication, in kg/ha.
type NPKApplication struct {
	N float64
	P float64
	K float64
}

// CropStart is the payload of SignalCropStart.
type CropStart struct {
	StartType string
	EndType   string
}

// CropFinish is the payload of SignalCropFinish. Reason is "harvest" or "max_duration".
type CropFinish struct {
	Reason string
}

// WeatherReady is the payload of SignalWeatherReady.
type WeatherReady struct {
	Source    string
	Station   string
	Days      int
	First     time.Time
	Last      time.Time
	FromCache bool
}

// Bus is a registry of signal handlers. The zero value is ready to use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Signal][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Signal][]Handler)}
}

// Subscribe registers h for sig. A handler subscribed twice is called twice.
func (b *Bus) Subscribe(sig Signal, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[Signal][]Handler)
	}
	b.handlers[sig] = append(b.handlers[sig], h)
}

// Publish calls every handler subscribed to ev.Signal. Handlers subscribed while
// Publish runs are not called for this event.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	hs := b.handlers[ev.Signal]
	hs = hs[:len(hs):len(hs)]
	b.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}

// Subscribers returns the number of handlers registered for sig.
func (b *Bus) Subscribers(sig Signal) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[sig])
}
