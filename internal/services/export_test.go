package services

import "time"

func (s *AuthServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}
