// Package maintenance holds one-off data repair jobs for the content catalog.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
)

// imagePattern matches URLs that point at an image file, optionally with a
// query string.
var imagePattern = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|svg)(\?.*)?$`)

// Catalog is the slice of the content service the image jobs need.
type Catalog interface {
	GetAllContent(ctx context.Context) ([]db.Content, error)
	Update(ctx context.Context, key db.ContentKey, u db.ContentUpdate) error
}

// CheckReport summarizes a read-only image scan.
type CheckReport struct {
	Total         int
	Missing       int // null or blank image URL
	Invalid       int // set but not an image URL
	MissingTitles []string
}

// FixReport summarizes an image repair run.
type FixReport struct {
	Scanned int
	Fixed   int
	Failed  int
	DryRun  bool
}

// Images checks and repairs catalog image URLs.
type Images struct {
	catalog     Catalog
	placeholder string
}

// NewImages creates the image jobs. Broken images are replaced with
// placeholder.
func NewImages(catalog Catalog, placeholder string) *Images {
	return &Images{catalog: catalog, placeholder: placeholder}
}

// IsMissing reports whether url is null or blank.
func IsMissing(url *string) bool {
	return url == nil || strings.TrimSpace(*url) == ""
}

// NeedsFix reports whether url should be replaced by the placeholder.
func NeedsFix(url *string) bool {
	return IsMissing(url) || !imagePattern.MatchString(strings.TrimSpace(*url))
}

// CheckContentImages counts catalog rows without a usable image.
func (m *Images) CheckContentImages(ctx context.Context) (*CheckReport, error) {
	items, err := m.catalog.GetAllContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking content images: %w", err)
	}

	report := &CheckReport{Total: len(items)}
	for _, c := range items {
		switch {
		case IsMissing(c.ImageURL):
			report.Missing++
			report.MissingTitles = append(report.MissingTitles, c.Title)
		case NeedsFix(c.ImageURL):
			report.Invalid++
		}
	}
	return report, nil
}

// FixContentImages points every row with a missing or non-image URL at the
// placeholder. A failed row is counted and the scan moves on.
//
// Rows are updated by title when every row sharing that title needs the fix.
// Otherwise the row is updated by id, so a good image on a namesake row is
// left alone.
func (m *Images) FixContentImages(ctx context.Context, dryRun bool) (*FixReport, error) {
	if m.placeholder == "" {
		return nil, errors.New("fixing content images: no placeholder URL configured")
	}

	items, err := m.catalog.GetAllContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("fixing content images: %w", err)
	}

	rows := make(map[string]int)
	broken := make(map[string]int)
	for _, c := range items {
		rows[c.Title]++
		if NeedsFix(c.ImageURL) {
			broken[c.Title]++
		}
	}

	report := &FixReport{DryRun: dryRun}
	// Outcome of each title-keyed update, shared by every row of that title.
	byTitle := make(map[string]error)
	for _, c := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		if !NeedsFix(c.ImageURL) {
			continue
		}

		log := logging.Ctx(ctx).With().Int64("content_id", c.ID).Str("title", c.Title).Logger()
		if dryRun {
			log.Info().Msg("would replace image")
			report.Fixed++
			continue
		}

		key := db.ByID(c.ID)
		titleKeyed := strings.TrimSpace(c.Title) != "" && rows[c.Title] == broken[c.Title]
		if titleKeyed {
			key = db.ByTitle(c.Title)
		}

		err, done := byTitle[c.Title]
		if !titleKeyed || !done {
			placeholder := m.placeholder
			err = m.catalog.Update(ctx, key, db.ContentUpdate{ImageURL: &placeholder})
			if titleKeyed {
				byTitle[c.Title] = err
			}
		}
		if err != nil {
			log.Error().Err(err).Msg("replacing image failed")
			report.Failed++
			continue
		}
		report.Fixed++
		log.Info().Msg("replaced image")
	}
	return report, nil
}
