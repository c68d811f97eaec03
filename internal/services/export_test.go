package services

import "time"

// SetNow replaces the clock used for todo timestamps.
func (s *TodoService) SetNow(now func() time.Time) {
	s.now = now
}
