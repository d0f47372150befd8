package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
)

// DefaultLimit is used by Recommend for non-positive limits.
const DefaultLimit = 10

// Service builds recommendations from activities and the catalog.
type Service struct {
	db        *db.DB
	cfg       Config
	partition Partitioner
}

// Option configures a Service.
type Option func(*Service)

// WithConfig overrides the clustering parameters.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.NumClusters > 0 {
			s.cfg.NumClusters = cfg.NumClusters
		}
		if cfg.MaxMoods > 0 {
			s.cfg.MaxMoods = cfg.MaxMoods
		}
	}
}

// WithPartitioner replaces k-means, e.g. with a deterministic split.
func WithPartitioner(p Partitioner) Option {
	return func(s *Service) {
		if p != nil {
			s.partition = p
		}
	}
}

// New creates a new recommendation service.
func New(database *db.DB, opts ...Option) *Service {
	s := &Service{
		db:        database,
		cfg:       DefaultConfig(),
		partition: KMeans,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend returns up to limit catalog items in the moods the user rates
// best, skipping anything already on their watchlist. Unknown users and
// users without history get nothing.
func (s *Service) Recommend(ctx context.Context, email string, limit int) ([]db.Content, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	userID, err := s.db.Users().IDByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return []db.Content{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recommending: %w", err)
	}

	activities, err := s.db.Activities().ListForUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("recommending: %w", err)
	}
	if len(activities) == 0 {
		return []db.Content{}, nil
	}

	moods := s.PreferredMoods(ctx, activities)

	saved, err := s.db.Watchlist().ContentIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommending: %w", err)
	}
	skip := make(map[int64]bool, len(saved))
	for _, id := range saved {
		skip[id] = true
	}

	out := []db.Content{}
	for _, mood := range moods {
		items, err := s.db.Content().List(ctx, mood, "")
		if err != nil {
			return nil, fmt.Errorf("recommending: %w", err)
		}
		for _, c := range items {
			if skip[c.ID] {
				continue
			}
			skip[c.ID] = true
			out = append(out, c)
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// PreferredMoods picks the moods to recommend from. With enough history it
// uses the best-rated taste cluster; otherwise, or if clustering fails, it
// falls back to the user's most frequent moods.
func (s *Service) PreferredMoods(ctx context.Context, activities []db.Activity) []string {
	if len(activities) < s.cfg.NumClusters {
		return RankMoods(activities, s.cfg.MaxMoods)
	}

	found, err := ClusterActivities(activities, s.cfg.NumClusters, s.partition)
	if err != nil || len(found) == 0 {
		logging.Ctx(ctx).Warn().Err(err).Msg("taste clustering failed, using mood frequency")
		return RankMoods(activities, s.cfg.MaxMoods)
	}

	best := found[0]
	logging.Ctx(ctx).Debug().
		Str("cluster", best.Label).
		Float64("mean_rating", best.MeanRating).
		Int("size", len(best.Activities)).
		Msg("preferred taste cluster")
	return RankMoods(best.Activities, s.cfg.MaxMoods)
}
