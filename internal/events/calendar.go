package events

import (
	"errors"
	"fmt"
	"time"
)

// Crop end types.
const (
	EndMaturity = "maturity"
	EndHarvest  = "harvest"
	EndEarliest = "earliest"
)

// CalendarConfig describes a single crop season.
type CalendarConfig struct {
	Start         time.Time // first simulated day
	CropStart     time.Time
	CropStartType string // "sowing" or "emergence"
	CropEnd       time.Time
	CropEndType   string // EndMaturity, EndHarvest or EndEarliest
	MaxDuration   int    // days from crop start
}

// CropCalendar signals the start and end of one crop season as days are stepped
// through. A crop finish is always followed by SignalTerminate.
type CropCalendar struct {
	cfg         CalendarConfig
	bus         *Bus
	duration    int
	inCropCycle bool
	terminated  bool
}

// NewCropCalendar validates cfg and subscribes the calendar to SignalCropFinish.
func NewCropCalendar(bus *Bus, cfg CalendarConfig) (*CropCalendar, error) {
	switch cfg.CropStartType {
	case "sowing", "emergence":
	default:
		return nil, fmt.Errorf("crop start type %q, want sowing or emergence", cfg.CropStartType)
	}
	switch cfg.CropEndType {
	case EndMaturity, EndHarvest, EndEarliest:
	default:
		return nil, fmt.Errorf("crop end type %q, want maturity, harvest or earliest", cfg.CropEndType)
	}
	if cfg.MaxDuration <= 0 {
		return nil, fmt.Errorf("max duration %d, want a positive number of days", cfg.MaxDuration)
	}
	if cfg.Start.After(cfg.CropStart) {
		return nil, errors.New("crop start before simulation start: crop will never start")
	}
	if cfg.CropEndType != EndMaturity && !cfg.CropEnd.After(cfg.CropStart) {
		return nil, errors.New("crop end not after crop start: crop will never finish")
	}

	c := &CropCalendar{cfg: cfg, bus: bus}
	bus.Subscribe(SignalCropFinish, c.onCropFinish)
	return c, nil
}

// Step advances the calendar to day and publishes any signals due on it.
// Steps after termination do nothing.
func (c *CropCalendar) Step(day time.Time) error {
	if c.terminated {
		return nil
	}
	c.duration++

	if day.Equal(c.cfg.CropStart) {
		if c.inCropCycle {
			return fmt.Errorf("crop start reached on %s while a crop is still active", day.Format(time.DateOnly))
		}
		c.duration = 0
		c.inCropCycle = true
		c.bus.Publish(Event{
			Signal:  SignalCropStart,
			Day:     day,
			Payload: CropStart{StartType: c.cfg.CropStartType, EndType: c.cfg.CropEndType},
		})
	}

	var reason string
	if c.cfg.CropEndType != EndMaturity && !day.Before(c.cfg.CropEnd) {
		reason = EndHarvest
	}
	if c.inCropCycle && c.duration >= c.cfg.MaxDuration {
		reason = "max_duration"
	}
	if reason != "" {
		c.inCropCycle = false
		c.bus.Publish(Event{Signal: SignalCropFinish, Day: day, Payload: CropFinish{Reason: reason}})
	}
	return nil
}

// Terminated reports whether SignalTerminate has been sent.
func (c *CropCalendar) Terminated() bool { return c.terminated }

// InCropCycle reports whether a crop is currently active.
func (c *CropCalendar) InCropCycle() bool { return c.inCropCycle }

func (c *CropCalendar) onCropFinish(ev Event) {
	c.inCropCycle = false
	c.terminated = true
	c.bus.Publish(Event{Signal: SignalTerminate, Day: ev.Day})
}
