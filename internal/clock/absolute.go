package clock

import "time"

// deductAbsolute implements spec.md §4.3's Absolute rule: mainLeft -=
// elapsed; violation iff mainLeft < -tolerance (tolerance < 0 disables
// checking entirely); mainLeft clamps to 0 once violated so a
// subsequent non-enforced move sees "0 left" rather than a runaway
// negative number (mirrors dumbarb.py's `timeLeft = 0 if timeLeft <= 0
// else timeLeft` clamp in checkinDelta).
func (s *State) deductAbsolute(elapsed time.Duration) bool {
	s.MainLeft -= elapsed
	violated := s.settings.Tolerance >= 0 && s.MainLeft < -s.settings.Tolerance
	if s.MainLeft < 0 {
		s.MainLeft = 0
	}
	return violated
}
