package match

import (
	"testing"
	"time"
)

func TestReadClock(t *testing.T) {
	kickoff := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	secondHalf := kickoff.Add(63 * time.Minute)

	firstHalf := Match{Status: StatusFirstHalf, HalfDurationMinutes: 45, KickoffAt: &kickoff}
	second := Match{Status: StatusSecondHalf, HalfDurationMinutes: 45, KickoffAt: &kickoff, SecondHalfStartedAt: &secondHalf}

	tests := []struct {
		name string
		m    Match
		now  time.Time
		want ClockReading
	}{
		{
			name: "not started",
			m:    Match{Status: StatusNotStarted},
			now:  kickoff,
			want: ClockReading{Period: PeriodPreMatch},
		},
		{
			name: "first seconds of the game",
			m:    firstHalf,
			now:  kickoff.Add(30 * time.Second),
			want: ClockReading{Period: PeriodFirstHalf, Minute: 1, Display: "1'"},
		},
		{
			name: "mid first half",
			m:    firstHalf,
			now:  kickoff.Add(22*time.Minute + 10*time.Second),
			want: ClockReading{Period: PeriodFirstHalf, Minute: 23, Display: "23'"},
		},
		{
			name: "first half added time",
			m:    firstHalf,
			now:  kickoff.Add(46*time.Minute + 5*time.Second),
			want: ClockReading{Period: PeriodFirstHalf, Minute: 45, AddedMinute: 2, Display: "45+2'"},
		},
		{
			name: "halftime",
			m:    Match{Status: StatusHalftime, HalfDurationMinutes: 45},
			now:  kickoff.Add(50 * time.Minute),
			want: ClockReading{Period: PeriodHalftime, Minute: 45, Display: "HT"},
		},
		{
			name: "second half",
			m:    second,
			now:  secondHalf.Add(10 * time.Minute),
			want: ClockReading{Period: PeriodSecondHalf, Minute: 56, Display: "56'"},
		},
		{
			name: "second half added time",
			m:    second,
			now:  secondHalf.Add(48 * time.Minute),
			want: ClockReading{Period: PeriodSecondHalf, Minute: 90, AddedMinute: 4, Display: "90+4'"},
		},
		{
			name: "full time",
			m:    Match{Status: StatusFullTime, HalfDurationMinutes: 30},
			now:  kickoff.Add(3 * time.Hour),
			want: ClockReading{Period: PeriodFullTime, Minute: 60, Display: "FT"},
		},
		{
			name: "clock skew before kickoff",
			m:    firstHalf,
			now:  kickoff.Add(-time.Minute),
			want: ClockReading{Period: PeriodFirstHalf, Minute: 1, Display: "1'"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ReadClock(tc.m, tc.now)
			if got != tc.want {
				t.Fatalf("unexpected reading: want %+v, got %+v", tc.want, got)
			}
		})
	}
}
