package match

import (
	"strconv"
	"time"
)

// Period is the coarse phase shown next to the clock.
type Period string

const (
	PeriodPreMatch   Period = "PRE_MATCH"
	PeriodFirstHalf  Period = "1H"
	PeriodHalftime   Period = "HT"
	PeriodSecondHalf Period = "2H"
	PeriodFullTime   Period = "FT"
)

// ClockReading is the elapsed-time display for a match at one instant.
// It is derived from persisted timestamps and never stored.
type ClockReading struct {
	Period      Period `json:"period"`
	Minute      int    `json:"minute"`
	AddedMinute int    `json:"added_minute"`
	Display     string `json:"display"`
}

// ReadClock computes the running match minute. Minutes are counted the way
// broadcasters do: the first minute of a half is 1', time beyond the nominal
// half length is shown as added time (45+2').
func ReadClock(m Match, now time.Time) ClockReading {
	half := m.HalfDurationMinutes
	switch m.Status {
	case StatusFirstHalf:
		if m.KickoffAt == nil {
			break
		}
		return runningReading(PeriodFirstHalf, 0, half, now.Sub(*m.KickoffAt))
	case StatusHalftime:
		return ClockReading{Period: PeriodHalftime, Minute: half, Display: "HT"}
	case StatusSecondHalf:
		if m.SecondHalfStartedAt == nil {
			break
		}
		return runningReading(PeriodSecondHalf, half, half, now.Sub(*m.SecondHalfStartedAt))
	case StatusFullTime:
		return ClockReading{Period: PeriodFullTime, Minute: half * 2, Display: "FT"}
	}

	return ClockReading{Period: PeriodPreMatch}
}

func runningReading(period Period, offset, half int, elapsed time.Duration) ClockReading {
	if elapsed < 0 {
		elapsed = 0
	}
	minute := int(elapsed/time.Minute) + 1
	if half > 0 && minute > half {
		added := minute - half
		return ClockReading{
			Period:      period,
			Minute:      offset + half,
			AddedMinute: added,
			Display:     strconv.Itoa(offset+half) + "+" + strconv.Itoa(added) + "'",
		}
	}

	return ClockReading{
		Period:  period,
		Minute:  offset + minute,
		Display: strconv.Itoa(offset+minute) + "'",
	}
}
