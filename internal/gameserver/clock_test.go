package gameserver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/petcare/internal/game/brain"
	"github.com/cory-johannsen/petcare/internal/gameserver"
)

func TestGameHour_Period(t *testing.T) {
	cases := []struct {
		hour   int32
		period gameserver.TimePeriod
	}{
		{0, gameserver.PeriodNight},
		{4, gameserver.PeriodNight},
		{5, gameserver.PeriodDawn},
		{6, gameserver.PeriodDawn},
		{7, gameserver.PeriodMorning},
		{11, gameserver.PeriodMorning},
		{12, gameserver.PeriodAfternoon},
		{16, gameserver.PeriodAfternoon},
		{17, gameserver.PeriodEvening},
		{20, gameserver.PeriodEvening},
		{21, gameserver.PeriodNight},
		{23, gameserver.PeriodNight},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.period, gameserver.GameHour(tc.hour).Period(), "hour %d", tc.hour)
	}
}

func TestGameHour_Activity(t *testing.T) {
	cases := []struct {
		hour     int32
		activity brain.Activity
	}{
		{0, brain.ActivityRest},
		{5, brain.ActivityRest},
		{6, brain.ActivityIdle},
		{8, brain.ActivityIdle},
		{9, brain.ActivityWork},
		{14, brain.ActivityWork},
		{15, brain.ActivityMeet},
		{16, brain.ActivityMeet},
		{17, brain.ActivityIdle},
		{20, brain.ActivityIdle},
		{21, brain.ActivityRest},
		{23, brain.ActivityRest},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.activity, gameserver.GameHour(tc.hour).Activity(), "hour %d", tc.hour)
	}
}

func TestGameHour_String(t *testing.T) {
	assert.Equal(t, "06:00", gameserver.GameHour(6).String())
	assert.Equal(t, "18:00", gameserver.GameHour(18).String())
}

func TestProperty_GameHour_ActivityNeverPanic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := rapid.Int32Range(0, 23).Draw(t, "hour")
		a := gameserver.GameHour(h).Activity()
		if !brain.ValidActivity(a) || a == brain.ActivityPanic {
			t.Fatalf("hour %d returned activity %q", h, a)
		}
	})
}

func TestGameClock_AdvancesHourEveryTicksPerHour(t *testing.T) {
	clk := gameserver.NewGameClock(6, 3)
	ch := make(chan gameserver.GameHour, 4)
	clk.Subscribe(ch)
	defer clk.Unsubscribe(ch)

	for i := 0; i < 2; i++ {
		h, changed := clk.Advance()
		assert.False(t, changed)
		assert.Equal(t, gameserver.GameHour(6), h)
	}
	h, changed := clk.Advance()
	assert.True(t, changed)
	assert.Equal(t, gameserver.GameHour(7), h)
	assert.Equal(t, gameserver.GameHour(7), <-ch)
	assert.Equal(t, gameserver.GameHour(7), clk.CurrentHour())
}

func TestGameClock_Wraps(t *testing.T) {
	clk := gameserver.NewGameClock(23, 1)
	h, changed := clk.Advance()
	assert.True(t, changed)
	assert.Equal(t, gameserver.GameHour(0), h)
}

func TestGameClock_UnsubscribeStopsDelivery(t *testing.T) {
	clk := gameserver.NewGameClock(0, 1)
	ch := make(chan gameserver.GameHour, 4)
	clk.Subscribe(ch)
	clk.Advance()
	clk.Unsubscribe(ch)
	clk.Advance()
	assert.Len(t, ch, 1)
}

func TestGameClock_FullSubscriberDoesNotBlock(t *testing.T) {
	clk := gameserver.NewGameClock(0, 1)
	ch := make(chan gameserver.GameHour)
	clk.Subscribe(ch)
	h, changed := clk.Advance()
	assert.True(t, changed)
	assert.Equal(t, gameserver.GameHour(1), h)
}

func TestProperty_GameClock_HourAfterN(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.Int32Range(0, 23).Draw(t, "start")
		per := rapid.Int64Range(1, 10).Draw(t, "ticks_per_hour")
		n := rapid.Int64Range(0, 500).Draw(t, "ticks")
		clk := gameserver.NewGameClock(start, per)
		for i := int64(0); i < n; i++ {
			clk.Advance()
		}
		want := gameserver.GameHour((int64(start) + n/per) % 24)
		if got := clk.CurrentHour(); got != want {
			t.Fatalf("after %d ticks at %d/hour from %d: got %v want %v", n, per, start, got, want)
		}
	})
}
