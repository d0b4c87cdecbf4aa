package race

import (
	"context"
	"time"
)

// SweepExpired deletes rooms older than ttl that never completed.
func (s *Service) SweepExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now().Add(-ttl))
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("ttl", ttl).Dur("interval", interval).Msg("Room expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Room expiry sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx, ttl)
			if err != nil {
				s.logger.Error().Err(err).Msg("Room expiry sweep failed")
				continue
			}
			if n > 0 {
				s.logger.Info().Int64("deleted", n).Msg("Expired rooms removed")
			}
		}
	}
}
