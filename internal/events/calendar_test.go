package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(m time.Month, d int) time.Time {
	return time.Date(2015, m, d, 0, 0, 0, 0, time.UTC)
}

func recordSignals(bus *Bus, sigs ...Signal) *[]Event {
	var got []Event
	for _, s := range sigs {
		bus.Subscribe(s, func(ev Event) { got = append(got, ev) })
	}
	return &got
}

func harvestConfig() CalendarConfig {
	return CalendarConfig{
		Start:         date(time.March, 1),
		CropStart:     date(time.March, 3),
		CropStartType: "sowing",
		CropEnd:       date(time.March, 6),
		CropEndType:   EndHarvest,
		MaxDuration:   300,
	}
}

func TestCropCalendar_HarvestSequence(t *testing.T) {
	bus := NewBus()
	got := recordSignals(bus, SignalCropStart, SignalCropFinish, SignalTerminate)
	cal, err := NewCropCalendar(bus, harvestConfig())
	require.NoError(t, err)

	for d := date(time.March, 1); !d.After(date(time.March, 10)); d = d.AddDate(0, 0, 1) {
		require.NoError(t, cal.Step(d))
		if d.Equal(date(time.March, 4)) {
			assert.True(t, cal.InCropCycle())
		}
	}

	require.Len(t, *got, 3)
	assert.Equal(t, SignalCropStart, (*got)[0].Signal)
	assert.Equal(t, date(time.March, 3), (*got)[0].Day)
	assert.Equal(t, CropStart{StartType: "sowing", EndType: EndHarvest}, (*got)[0].Payload)

	assert.Equal(t, SignalCropFinish, (*got)[1].Signal)
	assert.Equal(t, date(time.March, 6), (*got)[1].Day)
	assert.Equal(t, CropFinish{Reason: EndHarvest}, (*got)[1].Payload)

	assert.Equal(t, SignalTerminate, (*got)[2].Signal)
	assert.True(t, cal.Terminated())
	assert.False(t, cal.InCropCycle())
}

func TestCropCalendar_MaxDuration(t *testing.T) {
	bus := NewBus()
	got := recordSignals(bus, SignalCropFinish)
	cfg := harvestConfig()
	cfg.CropEndType = EndMaturity
	cfg.MaxDuration = 2
	cal, err := NewCropCalendar(bus, cfg)
	require.NoError(t, err)

	for d := date(time.March, 1); !d.After(date(time.March, 10)); d = d.AddDate(0, 0, 1) {
		require.NoError(t, cal.Step(d))
	}

	require.Len(t, *got, 1)
	assert.Equal(t, date(time.March, 5), (*got)[0].Day)
	assert.Equal(t, CropFinish{Reason: "max_duration"}, (*got)[0].Payload)
}

func TestNewCropCalendar_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CalendarConfig)
	}{
		{"crop start before simulation", func(c *CalendarConfig) { c.CropStart = date(time.February, 1) }},
		{"end not after start", func(c *CalendarConfig) { c.CropEnd = c.CropStart }},
		{"bad start type", func(c *CalendarConfig) { c.CropStartType = "planting" }},
		{"bad end type", func(c *CalendarConfig) { c.CropEndType = "never" }},
		{"no max duration", func(c *CalendarConfig) { c.MaxDuration = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := harvestConfig()
			tt.mutate(&cfg)
			_, err := NewCropCalendar(NewBus(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewCropCalendar_MaturityIgnoresEndDate(t *testing.T) {
	cfg := harvestConfig()
	cfg.CropEndType = EndMaturity
	cfg.CropEnd = time.Time{}
	_, err := NewCropCalendar(NewBus(), cfg)
	assert.NoError(t, err)
}
