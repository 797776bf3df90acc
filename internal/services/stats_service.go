package services

import (
	"context"
	"time"

	"github.com/saeid-a/GymDeskBack/internal/cache"
	"github.com/saeid-a/GymDeskBack/internal/models"
)

type memberCounter interface {
	CountMembers(ctx context.Context) (int64, error)
}

type classCounter interface {
	Count(ctx context.Context) (int64, error)
}

type planCounter interface {
	Count(ctx context.Context) (int64, error)
}

// StatsService serves dashboard counts from a TTL cache. Mutating handlers
// call Invalidate so the next read reflects the write instead of waiting out
// the TTL.
type StatsService struct {
	userRepo  memberCounter
	classRepo classCounter
	planRepo  planCounter
	cache     *cache.TTLCache[models.DashboardStats]
}

func NewStatsService(
	userRepo memberCounter,
	classRepo classCounter,
	planRepo planCounter,
	ttl time.Duration,
) *StatsService {
	return &StatsService{
		userRepo:  userRepo,
		classRepo: classRepo,
		planRepo:  planRepo,
		cache:     cache.NewTTLCache[models.DashboardStats](ttl),
	}
}

// NewStatsServiceWithCache is for tests that drive the cache clock.
func NewStatsServiceWithCache(
	userRepo memberCounter,
	classRepo classCounter,
	planRepo planCounter,
	statsCache *cache.TTLCache[models.DashboardStats],
) *StatsService {
	return &StatsService{
		userRepo:  userRepo,
		classRepo: classRepo,
		planRepo:  planRepo,
		cache:     statsCache,
	}
}

func (s *StatsService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	return s.cache.Get(func() (models.DashboardStats, error) {
		membersCount, err := s.userRepo.CountMembers(ctx)
		if err != nil {
			return models.DashboardStats{}, err
		}
		classesCount, err := s.classRepo.Count(ctx)
		if err != nil {
			return models.DashboardStats{}, err
		}
		plansCount, err := s.planRepo.Count(ctx)
		if err != nil {
			return models.DashboardStats{}, err
		}
		return models.DashboardStats{
			MembersCount: membersCount,
			ClassesCount: classesCount,
			PlansCount:   plansCount,
		}, nil
	})
}

func (s *StatsService) Invalidate() {
	s.cache.Invalidate()
}
