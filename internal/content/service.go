// Package content provides the content catalog: lookups by mood, type and
// title, search, and the legacy keyed JSON views.
package content

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
	"github.com/moodflix/moodflix/internal/validation"
)

// ErrContentNotFound is returned when no catalog row matches a key.
var ErrContentNotFound = errors.New("content not found")

// NewContent describes a catalog item to add.
type NewContent struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Mood        string  `json:"mood" validate:"required,max=64"`
	Type        string  `json:"type" validate:"required,max=64"`
	Link        string  `json:"link" validate:"omitempty,max=2048"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,max=2048"`
}

// Entry is a catalog item in the legacy keyed shape. Key is "content_<id>".
type Entry struct {
	Key         string `json:"-"`
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Mood        string `json:"mood"`
	Type        string `json:"type"`
	Link        string `json:"link"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// EntryKey returns the legacy key for a content id.
func EntryKey(id int64) string {
	return "content_" + strconv.FormatInt(id, 10)
}

// NewEntry converts a catalog row to its legacy shape.
func NewEntry(c *db.Content) Entry {
	e := Entry{
		Key:         EntryKey(c.ID),
		ID:          c.ID,
		Title:       c.Title,
		Mood:        c.Mood,
		Type:        c.Type,
		Link:        c.Link,
		Description: c.Description,
	}
	if c.ImageURL != nil {
		e.ImageURL = *c.ImageURL
	}
	return e
}

// Service handles catalog operations.
type Service struct {
	db *db.DB
}

// New creates a new content service.
func New(database *db.DB) *Service {
	return &Service{db: database}
}

// GetAllContent returns the whole catalog ordered by id.
func (s *Service) GetAllContent(ctx context.Context) ([]db.Content, error) {
	return s.list(ctx, "", "")
}

// GetContentByMood returns content tagged with mood.
func (s *Service) GetContentByMood(ctx context.Context, mood string) ([]db.Content, error) {
	return s.list(ctx, mood, "")
}

// GetContentByType returns content of the given type.
func (s *Service) GetContentByType(ctx context.Context, typ string) ([]db.Content, error) {
	return s.list(ctx, "", typ)
}

// GetFilteredContentList picks the query matching the filters given. Empty
// filters are ignored, so no filters returns everything.
func (s *Service) GetFilteredContentList(ctx context.Context, mood, typ string) ([]db.Content, error) {
	mood, typ = strings.TrimSpace(mood), strings.TrimSpace(typ)
	switch {
	case mood == "" && typ == "":
		return s.GetAllContent(ctx)
	case typ == "":
		return s.GetContentByMood(ctx, mood)
	case mood == "":
		return s.GetContentByType(ctx, typ)
	default:
		return s.list(ctx, mood, typ)
	}
}

func (s *Service) list(ctx context.Context, mood, typ string) ([]db.Content, error) {
	items, err := s.db.Content().List(ctx, mood, typ)
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}
	if items == nil {
		items = []db.Content{}
	}
	return items, nil
}

// SearchContent matches term case-insensitively against titles and
// descriptions. Wildcard characters in term match literally.
func (s *Service) SearchContent(ctx context.Context, term string) ([]db.Content, error) {
	items, err := s.db.Content().Search(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, fmt.Errorf("searching content: %w", err)
	}
	if items == nil {
		items = []db.Content{}
	}
	return items, nil
}

// GetContentByTitle returns the item with the exact title.
func (s *Service) GetContentByTitle(ctx context.Context, title string) (*db.Content, error) {
	return s.get(ctx, db.ByTitle(title))
}

// GetContentByID returns the item with the given id.
func (s *Service) GetContentByID(ctx context.Context, id int64) (*db.Content, error) {
	return s.get(ctx, db.ByID(id))
}

func (s *Service) get(ctx context.Context, key db.ContentKey) (*db.Content, error) {
	c, err := s.db.Content().Get(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("getting content %s: %w", key, err)
	}
	return c, nil
}

// GetContentCount returns the catalog size.
func (s *Service) GetContentCount(ctx context.Context) (int64, error) {
	n, err := s.db.Content().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting content: %w", err)
	}
	return n, nil
}

// AddContent inserts a catalog item.
func (s *Service) AddContent(ctx context.Context, in NewContent) (*db.Content, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	c := &db.Content{
		Title:       in.Title,
		Mood:        in.Mood,
		Type:        in.Type,
		Link:        in.Link,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if err := s.db.Content().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("adding content: %w", err)
	}
	return c, nil
}

// DeleteContent removes the item with the given id.
func (s *Service) DeleteContent(ctx context.Context, id int64) error {
	return s.delete(ctx, db.ByID(id))
}

// DeleteContentByKey removes content named by a raw key: "content_<id>" or
// a bare integer selects by id, anything else by title.
func (s *Service) DeleteContentByKey(ctx context.Context, raw string) error {
	return s.delete(ctx, db.ParseContentKey(raw))
}

func (s *Service) delete(ctx context.Context, key db.ContentKey) error {
	n, err := s.db.Content().Delete(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrContentNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("deleting content %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrContentNotFound, key)
	}
	logging.Ctx(ctx).Info().Str("key", key.String()).Int64("rows", n).Msg("content deleted")
	return nil
}

// Update applies a partial update to the content selected by key. A title
// key updates every row with that title.
func (s *Service) Update(ctx context.Context, key db.ContentKey, u db.ContentUpdate) error {
	if u.Empty() {
		return fmt.Errorf("%w: no fields to update", validation.ErrInvalid)
	}
	n, err := s.db.Content().Update(ctx, key, u)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrContentNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("updating content %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrContentNotFound, key)
	}
	return nil
}

// legacyFields maps legacy JSON field names to update targets.
var legacyFields = []struct {
	names []string
	set   func(*db.ContentUpdate, string)
}{
	{[]string{"title"}, func(u *db.ContentUpdate, v string) { u.Title = &v }},
	{[]string{"mood"}, func(u *db.ContentUpdate, v string) { u.Mood = &v }},
	{[]string{"type"}, func(u *db.ContentUpdate, v string) { u.Type = &v }},
	{[]string{"link"}, func(u *db.ContentUpdate, v string) { u.Link = &v }},
	{[]string{"description"}, func(u *db.ContentUpdate, v string) { u.Description = &v }},
	{[]string{"imageUrl", "image_url", "image"}, func(u *db.ContentUpdate, v string) { u.ImageURL = &v }},
}

// ParseLegacyUpdate reads a legacy JSON patch such as
// {"title":"New","imageUrl":"https://..."}. Unknown and non-string fields
// are ignored.
func ParseLegacyUpdate(patch []byte) (db.ContentUpdate, error) {
	var u db.ContentUpdate
	if !gjson.ValidBytes(patch) {
		return u, fmt.Errorf("%w: malformed JSON patch", validation.ErrInvalid)
	}
	doc := gjson.ParseBytes(patch)
	if !doc.IsObject() {
		return u, fmt.Errorf("%w: patch must be a JSON object", validation.ErrInvalid)
	}

	for _, f := range legacyFields {
		for _, name := range f.names {
			if v := doc.Get(name); v.Type == gjson.String {
				f.set(&u, v.String())
				break
			}
		}
	}
	return u, nil
}

// UpdateContent applies a legacy JSON patch to the content selected by key.
func (s *Service) UpdateContent(ctx context.Context, key db.ContentKey, patch []byte) error {
	u, err := ParseLegacyUpdate(patch)
	if err != nil {
		return err
	}
	return s.Update(ctx, key, u)
}

// GetFilteredContent returns the filtered catalog in the legacy keyed shape.
func (s *Service) GetFilteredContent(ctx context.Context, mood, typ string) ([]Entry, error) {
	items, err := s.GetFilteredContentList(ctx, mood, typ)
	if err != nil {
		return nil, err
	}
	return toEntries(items), nil
}

// GetAllContentJSON returns the whole catalog in the legacy keyed shape.
// Storage failures are logged and yield an empty result.
func (s *Service) GetAllContentJSON(ctx context.Context) []Entry {
	items, err := s.GetAllContent(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("loading legacy content view")
		return []Entry{}
	}
	return toEntries(items)
}

func toEntries(items []db.Content) []Entry {
	entries := make([]Entry, len(items))
	for i := range items {
		entries[i] = NewEntry(&items[i])
	}
	return entries
}
