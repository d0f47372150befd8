// Package watchlist manages the content each user has saved for later.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/moodflix/moodflix/internal/content"
	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
	"github.com/moodflix/moodflix/internal/records"
)

var (
	// ErrUserNotFound is the records sentinel, shared so callers match one value.
	ErrUserNotFound = records.ErrUserNotFound

	// ErrContentNotFound is the content sentinel.
	ErrContentNotFound = content.ErrContentNotFound
)

// Entry is a watchlist item in the legacy keyed shape. Key is "item_<n>"
// where n is the item's 0-based position.
type Entry struct {
	Key         string `json:"-"`
	ContentID   int64  `json:"contentId"`
	Title       string `json:"title"`
	Mood        string `json:"mood"`
	Type        string `json:"type"`
	Link        string `json:"link"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	AddedAt     int64  `json:"addedAt"` // unix millis
}

// Service handles watchlist operations.
type Service struct {
	db *db.DB
}

// New creates a new watchlist service.
func New(database *db.DB) *Service {
	return &Service{db: database}
}

// Add saves content to the user's watchlist. Adding twice is a no-op; the
// result reports whether a new entry was created.
func (s *Service) Add(ctx context.Context, email string, key db.ContentKey) (bool, error) {
	userID, contentID, err := s.resolve(ctx, email, key)
	if err != nil {
		return false, err
	}
	added, err := s.db.Watchlist().Add(ctx, userID, contentID)
	if err != nil {
		return false, fmt.Errorf("adding to watchlist: %w", err)
	}
	return added, nil
}

// Remove drops content from the user's watchlist and reports whether it
// was there.
func (s *Service) Remove(ctx context.Context, email string, key db.ContentKey) (bool, error) {
	userID, contentID, err := s.resolve(ctx, email, key)
	if err != nil {
		return false, err
	}
	removed, err := s.db.Watchlist().Remove(ctx, userID, contentID)
	if err != nil {
		return false, fmt.Errorf("removing from watchlist: %w", err)
	}
	return removed, nil
}

// IsInWatchlist reports whether the content is saved. Unknown users and
// content are simply not in any watchlist.
func (s *Service) IsInWatchlist(ctx context.Context, email string, key db.ContentKey) (bool, error) {
	userID, contentID, err := s.resolve(ctx, email, key)
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrContentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	ok, err := s.db.Watchlist().Contains(ctx, userID, contentID)
	if err != nil {
		return false, fmt.Errorf("checking watchlist: %w", err)
	}
	return ok, nil
}

// Count returns the size of the user's watchlist.
func (s *Service) Count(ctx context.Context, email string) (int64, error) {
	userID, ok, err := s.lookupUser(ctx, email)
	if err != nil || !ok {
		return 0, err
	}
	n, err := s.db.Watchlist().Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("counting watchlist: %w", err)
	}
	return n, nil
}

// Clear empties the user's watchlist and returns how many entries went.
func (s *Service) Clear(ctx context.Context, email string) (int64, error) {
	userID, ok, err := s.lookupUser(ctx, email)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUserNotFound
	}
	n, err := s.db.Watchlist().Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing watchlist: %w", err)
	}
	return n, nil
}

// Get returns the user's watchlist, most recently added first.
func (s *Service) Get(ctx context.Context, email string) ([]db.WatchlistItem, error) {
	userID, ok, err := s.lookupUser(ctx, email)
	if err != nil || !ok {
		return []db.WatchlistItem{}, err
	}
	items, err := s.db.Watchlist().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading watchlist: %w", err)
	}
	if items == nil {
		items = []db.WatchlistItem{}
	}
	return items, nil
}

// GetJSON returns the watchlist in the legacy keyed shape. Storage
// failures are logged and yield an empty result.
func (s *Service) GetJSON(ctx context.Context, email string) []Entry {
	items, err := s.Get(ctx, email)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("loading legacy watchlist view")
		return []Entry{}
	}

	entries := make([]Entry, len(items))
	for i, item := range items {
		c := item.Content
		entries[i] = Entry{
			Key:         "item_" + strconv.Itoa(i),
			ContentID:   c.ID,
			Title:       c.Title,
			Mood:        c.Mood,
			Type:        c.Type,
			Link:        c.Link,
			Description: c.Description,
			AddedAt:     item.AddedAt.UnixMilli(),
		}
		if c.ImageURL != nil {
			entries[i].ImageURL = *c.ImageURL
		}
	}
	return entries
}

// ContentIDs returns the ids of everything on the user's watchlist.
func (s *Service) ContentIDs(ctx context.Context, email string) ([]int64, error) {
	userID, ok, err := s.lookupUser(ctx, email)
	if err != nil || !ok {
		return nil, err
	}
	ids, err := s.db.Watchlist().ContentIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading watchlist ids: %w", err)
	}
	return ids, nil
}

func (s *Service) resolve(ctx context.Context, email string, key db.ContentKey) (int64, int64, error) {
	userID, ok, err := s.lookupUser(ctx, email)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, ErrUserNotFound
	}

	contentID, err := s.db.Content().ResolveID(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return 0, 0, fmt.Errorf("%w: %s", ErrContentNotFound, key)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("resolving content: %w", err)
	}
	return userID, contentID, nil
}

func (s *Service) lookupUser(ctx context.Context, email string) (int64, bool, error) {
	id, err := s.db.Users().IDByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolving user: %w", err)
	}
	return id, true, nil
}
