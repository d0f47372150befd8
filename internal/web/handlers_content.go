package web

import (
	"net/http"

	"github.com/moodflix/moodflix/internal/content"
	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/watchlist"
)

type keyBody struct {
	Key string `json:"key"`
}

// ListContent returns catalog items (GET /api/content?mood=&type=&q=).
// A search term takes precedence over the mood and type filters.
func (h *Handlers) ListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		items []db.Content
		err   error
	)
	if term := q.Get("q"); term != "" {
		items, err = h.content.SearchContent(r.Context(), term)
	} else {
		items, err = h.content.GetFilteredContentList(r.Context(), q.Get("mood"), q.Get("type"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contentView(items))
}

// LegacyContent returns the catalog as a keyed object
// (GET /api/content/legacy?mood=&type=).
func (h *Handlers) LegacyContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mood, typ := q.Get("mood"), q.Get("type")

	var entries []content.Entry
	if mood == "" && typ == "" {
		entries = h.content.GetAllContentJSON(r.Context())
	} else {
		var err error
		if entries, err = h.content.GetFilteredContent(r.Context(), mood, typ); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, envelope(entries, func(e content.Entry) string { return e.Key }))
}

// ContentCount returns the catalog size (GET /api/content/count).
func (h *Handlers) ContentCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.content.GetContentCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// GetContent returns one item by id, content_<id> or title
// (GET /api/content/{key}).
func (h *Handlers) GetContent(w http.ResponseWriter, r *http.Request) {
	key := db.ParseContentKey(pathParam(r, "key"))

	var (
		c   *db.Content
		err error
	)
	if id, ok := key.ID(); ok {
		c, err = h.content.GetContentByID(r.Context(), id)
	} else {
		title, _ := key.Title()
		c, err = h.content.GetContentByTitle(r.Context(), title)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, content.NewEntry(c))
}

// AddContent creates a catalog item (POST /api/content, admin).
func (h *Handlers) AddContent(w http.ResponseWriter, r *http.Request) {
	var in content.NewContent
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.content.AddContent(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, content.NewEntry(c))
}

// UpdateContent applies a legacy JSON patch (PATCH /api/content/{key}, admin).
func (h *Handlers) UpdateContent(w http.ResponseWriter, r *http.Request) {
	patch, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := db.ParseContentKey(pathParam(r, "key"))
	if err := h.content.UpdateContent(r.Context(), key, patch); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteContent removes catalog items (DELETE /api/content/{key}, admin).
func (h *Handlers) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteContentByKey(r.Context(), pathParam(r, "key")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Watchlist lists the caller's saved items, newest first (GET /api/watchlist).
func (h *Handlers) Watchlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.watchlist.Get(r.Context(), currentEmail(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, watchlistView(items))
}

// LegacyWatchlist returns the watchlist as a keyed object
// (GET /api/watchlist/legacy).
func (h *Handlers) LegacyWatchlist(w http.ResponseWriter, r *http.Request) {
	entries := h.watchlist.GetJSON(r.Context(), currentEmail(r))
	writeJSON(w, http.StatusOK, envelope(entries, func(e watchlist.Entry) string { return e.Key }))
}

// WatchlistCount returns how many items the caller saved
// (GET /api/watchlist/count).
func (h *Handlers) WatchlistCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.watchlist.Count(r.Context(), currentEmail(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// AddToWatchlist saves an item (POST /api/watchlist).
func (h *Handlers) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	added, err := h.watchlist.Add(r.Context(), currentEmail(r), db.ParseContentKey(body.Key))
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"added": added})
}

// InWatchlist reports whether an item is saved (GET /api/watchlist/{key}).
func (h *Handlers) InWatchlist(w http.ResponseWriter, r *http.Request) {
	ok, err := h.watchlist.IsInWatchlist(r.Context(), currentEmail(r), db.ParseContentKey(pathParam(r, "key")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inWatchlist": ok})
}

// RemoveFromWatchlist unsaves an item (DELETE /api/watchlist/{key}).
func (h *Handlers) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	removed, err := h.watchlist.Remove(r.Context(), currentEmail(r), db.ParseContentKey(pathParam(r, "key")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// ClearWatchlist removes every saved item (DELETE /api/watchlist).
func (h *Handlers) ClearWatchlist(w http.ResponseWriter, r *http.Request) {
	n, err := h.watchlist.Clear(r.Context(), currentEmail(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": n})
}
