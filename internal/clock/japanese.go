package clock

import "time"

// deductJapanese implements spec.md §4.3's Japanese byo-yomi rule,
// grounded on dumbarb.py's TimeKeep.checkinDelta Japanese branch:
// while in Main, the residual after Main underflows into Period
// accounting for the same move; in Period, a move may span k whole
// periods (k = floor(elapsed/periodTime), tolerance-adjusted only when
// it would otherwise exhaust every remaining period) and periodsLeft
// is decremented by k. Violation iff periodsLeft <= 0 after the
// decrement (dumbarb.py returns exactly that, not periodsLeft < 0).
func (s *State) deductJapanese(elapsed time.Duration) bool {
	if s.Phase == Main {
		s.MainLeft -= elapsed
		if s.MainLeft >= 0 {
			return false
		}
		residual := -s.MainLeft
		s.MainLeft = 0
		s.Phase = Period
		s.PeriodsLeft = s.settings.PeriodCount
		s.PeriodLeft = s.settings.PeriodTime
		elapsed = residual
	}

	toleranceOK := s.settings.Tolerance >= 0
	exhausted := int(elapsed / s.settings.PeriodTime)
	if exhausted >= s.PeriodsLeft && toleranceOK {
		adjusted := elapsed - s.settings.Tolerance
		if adjusted < 0 {
			adjusted = 0
		}
		exhausted = int(adjusted / s.settings.PeriodTime)
	}
	s.PeriodsLeft -= exhausted
	s.PeriodLeft = s.settings.PeriodTime

	return toleranceOK && s.PeriodsLeft <= 0
}

func (s *State) clampJapanese() {
	s.PeriodsLeft = 1
	s.PeriodLeft = s.settings.PeriodTime
}
