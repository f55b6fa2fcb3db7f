package clock

import "time"

// deductCanadian implements spec.md §4.3's Canadian byo-yomi rule.
// While in Main, the residual after Main underflows into the first
// Period immediately (same move). In Period, each move consumes one
// stone; the block refills only if the move did not violate — a
// violating move instead stays violated so the caller can end the
// game, or (if not enforcing) clamp via ClampAfterViolation.
func (s *State) deductCanadian(elapsed time.Duration) bool {
	if s.Phase == Main {
		s.MainLeft -= elapsed
		if s.MainLeft >= 0 {
			return false
		}
		residual := -s.MainLeft
		s.MainLeft = 0
		s.Phase = Period
		s.PeriodLeft = s.settings.PeriodTime
		s.StonesLeft = s.settings.PeriodCount
		elapsed = residual
	}

	s.PeriodLeft -= elapsed
	s.StonesLeft--

	violated := s.settings.Tolerance >= 0 && s.PeriodLeft < -s.settings.Tolerance
	if !violated && s.StonesLeft <= 0 {
		s.PeriodLeft = s.settings.PeriodTime
		s.StonesLeft = s.settings.PeriodCount
	}
	return violated
}

func (s *State) clampCanadian() {
	s.PeriodLeft = s.settings.PeriodTime
	s.StonesLeft = 1
}
