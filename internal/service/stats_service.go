package service

import (
	"context"

	"qrmenu/internal/domain"
	"qrmenu/internal/repository"
)

// StatsService computes the dashboard counters on every call; nothing is
// cached between requests.
type StatsService struct {
	repo repository.StatsRepository
	tx   repository.TxManager
}

func NewStatsService(repo repository.StatsRepository, tx repository.TxManager) *StatsService {
	return &StatsService{repo: repo, tx: tx}
}

// Stats reads all three counts inside one transaction so they describe the
// same snapshot.
func (s *StatsService) Stats(ctx context.Context) (*domain.Stats, error) {
	var st domain.Stats
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if st.TotalItems, err = s.repo.CountItems(ctx, false); err != nil {
			return err
		}
		if st.TotalCategories, err = s.repo.CountCategories(ctx); err != nil {
			return err
		}
		st.ActiveItems, err = s.repo.CountItems(ctx, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}
