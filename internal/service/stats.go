package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
)

// Age-group bucketing for the site stats breakdown: author ages fold into
// 7-year buckets starting at MinAge, so bucket i covers
// [7+7i, 14+7i). Age 13 lands in "7-13", age 14 starts "14-20".
const (
	ageBucketWidth = 7
	topAgeGroups   = 3
)

// StatsService computes the aggregate views: per-age post counts and the
// site-wide totals. Everything is recomputed on each request — a full
// rescan the store can afford at this volume, with no materialized
// aggregates to keep consistent.
type StatsService struct {
	stats  repository.StatsRepository
	logger *slog.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(stats repository.StatsRepository, logger *slog.Logger) *StatsService {
	return &StatsService{
		stats:  stats,
		logger: logger,
	}
}

// AgeCounts returns active-post counts per target age, ascending by age.
// Ages with zero posts are omitted; consumers default them to 0.
func (s *StatsService) AgeCounts(ctx context.Context) ([]model.AgeCount, error) {
	counts, err := s.stats.AgeCounts(ctx)
	if err != nil {
		s.logger.Error("failed to fetch age counts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("fetching age counts: %w", err)
	}
	return counts, nil
}

// Site assembles the site-wide stats. total_likes sums the denormalized
// counters over active posts, and active_ages counts distinct target ages —
// both defined so they agree with what the listing pages display.
func (s *StatsService) Site(ctx context.Context) (*model.SiteStats, error) {
	totalPosts, err := s.stats.CountActivePosts(ctx)
	if err != nil {
		return nil, s.statsErr("counting posts", err)
	}
	totalUsers, err := s.stats.CountActiveUsers(ctx)
	if err != nil {
		return nil, s.statsErr("counting users", err)
	}
	totalLikes, err := s.stats.SumLikeCounts(ctx)
	if err != nil {
		return nil, s.statsErr("summing likes", err)
	}
	activeAges, err := s.stats.CountActiveAges(ctx)
	if err != nil {
		return nil, s.statsErr("counting active ages", err)
	}
	authorAges, err := s.stats.DistinctAuthorAges(ctx)
	if err != nil {
		return nil, s.statsErr("listing author ages", err)
	}

	return &model.SiteStats{
		TotalPosts:       totalPosts,
		TotalUsers:       totalUsers,
		TotalLikes:       totalLikes,
		ActiveAges:       activeAges,
		ActiveUserGroups: bucketAuthorAges(authorAges),
	}, nil
}

func (s *StatsService) statsErr(what string, err error) error {
	s.logger.Error("failed to compute site stats",
		slog.String("step", what),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("computing site stats (%s): %w", what, err)
}

// bucketAuthorAges folds distinct author ages into 7-year buckets and
// returns the top buckets by distinct-age count, largest first. Ties break
// toward the younger bucket so the output is deterministic.
func bucketAuthorAges(ages []int) []model.AgeGroup {
	distinct := make(map[int]map[int]bool) // bucket index → set of ages
	for _, age := range ages {
		if !ValidAge(age) {
			continue
		}
		idx := (age - MinAge) / ageBucketWidth
		if distinct[idx] == nil {
			distinct[idx] = make(map[int]bool)
		}
		distinct[idx][age] = true
	}

	groups := make([]model.AgeGroup, 0, len(distinct))
	indexes := make([]int, 0, len(distinct))
	for idx := range distinct {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool {
		a, b := indexes[i], indexes[j]
		if len(distinct[a]) != len(distinct[b]) {
			return len(distinct[a]) > len(distinct[b])
		}
		return a < b
	})

	for _, idx := range indexes {
		lo := MinAge + idx*ageBucketWidth
		groups = append(groups, model.AgeGroup{
			AgeRange: fmt.Sprintf("%d-%d", lo, lo+ageBucketWidth-1),
			AgeCount: len(distinct[idx]),
		})
		if len(groups) == topAgeGroups {
			break
		}
	}

	return groups
}
