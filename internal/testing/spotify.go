package testing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/spotify-sync/internal/models"
)

// RecordedRequest is a request received by [FakeSpotify].
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Auth   string
}

// CreatedPlaylist is a playlist created through [FakeSpotify].
type CreatedPlaylist struct {
	ID          string
	Owner       string
	Name        string
	Description string
	Public      bool
	URIs        []string
}

// FakeSpotify is an in-memory Web API serving one account's library over httptest.
//
// List endpoints honour limit/offset and emit a next link while more items remain.
// Fail maps "METHOD /path" to a status code returned instead of the normal response.
type FakeSpotify struct {
	Server *httptest.Server

	mu             sync.Mutex
	UserID         string
	Liked          []models.Track
	Playlists      []models.SimplifiedPlaylist
	PlaylistTracks map[string][]models.Track
	Fail           map[string]int
	Requests       []RecordedRequest
	SavedIDs       [][]string
	Created        []*CreatedPlaylist
}

// NewFakeSpotify starts a fake server. Callers must Close it.
func NewFakeSpotify() *FakeSpotify {
	f := &FakeSpotify{
		UserID:         "fake-user",
		PlaylistTracks: map[string][]models.Track{},
		Fail:           map[string]int{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL is the server's base URL.
func (f *FakeSpotify) URL() string { return f.Server.URL }

// Close shuts the server down.
func (f *FakeSpotify) Close() { f.Server.Close() }

// RequestsFor returns recorded requests matching method and path.
func (f *FakeSpotify) RequestsFor(method, path string) []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []RecordedRequest
	for _, r := range f.Requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// AllRequests returns every recorded request in arrival order.
func (f *FakeSpotify) AllRequests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.Requests...)
}

// SavedBatches returns the id batches received by the save-tracks endpoint.
func (f *FakeSpotify) SavedBatches() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.SavedIDs...)
}

// CreatedPlaylists returns a snapshot of playlists created so far.
func (f *FakeSpotify) CreatedPlaylists() []CreatedPlaylist {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]CreatedPlaylist, len(f.Created))
	for i, p := range f.Created {
		out[i] = *p
		out[i].URIs = append([]string(nil), p.URIs...)
	}
	return out
}

// SavedTrackIDs flattens every saved batch in request order.
func (f *FakeSpotify) SavedTrackIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, batch := range f.SavedIDs {
		out = append(out, batch...)
	}
	return out
}

func (f *FakeSpotify) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
		Auth:   r.Header.Get("Authorization"),
	})

	if status, ok := f.Fail[r.Method+" "+r.URL.Path]; ok {
		http.Error(w, fmt.Sprintf(`{"error":{"status":%d,"message":"forced failure"}}`, status), status)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/me":
		writeJSON(w, models.UserProfile{ID: f.UserID, DisplayName: "Fake User"})
	case r.Method == http.MethodGet && r.URL.Path == "/me/tracks":
		items := make([]map[string]any, len(f.Liked))
		for i, t := range f.Liked {
			items[i] = map[string]any{"track": t}
		}
		writePage(w, r, items)
	case r.Method == http.MethodPut && r.URL.Path == "/me/tracks":
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.SavedIDs = append(f.SavedIDs, req.IDs)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && r.URL.Path == "/me/playlists":
		writePage(w, r, f.Playlists)
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "playlists" && parts[2] == "tracks":
		tracks := f.PlaylistTracks[parts[1]]
		items := make([]map[string]any, len(tracks))
		for i, t := range tracks {
			items[i] = map[string]any{"track": t}
		}
		writePage(w, r, items)
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "users" && parts[2] == "playlists":
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Public      bool   `json:"public"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p := &CreatedPlaylist{
			ID:          fmt.Sprintf("created-%d", len(f.Created)+1),
			Owner:       parts[1],
			Name:        req.Name,
			Description: req.Description,
			Public:      req.Public,
		}
		f.Created = append(f.Created, p)
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]string{"id": p.ID, "name": p.Name})
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "playlists" && parts[2] == "tracks":
		var req struct {
			URIs []string `json:"uris"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, p := range f.Created {
			if p.ID == parts[1] {
				p.URIs = append(p.URIs, req.URIs...)
				w.WriteHeader(http.StatusCreated)
				writeJSON(w, map[string]string{"snapshot_id": "snap"})
				return
			}
		}
		http.Error(w, `{"error":{"status":404,"message":"Not found."}}`, http.StatusNotFound)
	default:
		http.NotFound(w, r)
	}
}

func writePage[T any](w http.ResponseWriter, r *http.Request, all []T) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	start := min(offset, len(all))
	end := min(start+limit, len(all))

	var next *string
	if end < len(all) {
		link := fmt.Sprintf("%s?limit=%d&offset=%d", r.URL.Path, limit, end)
		next = &link
	}

	items := all[start:end]
	if items == nil {
		items = []T{}
	}

	writeJSON(w, map[string]any{
		"items":  items,
		"total":  len(all),
		"limit":  limit,
		"offset": offset,
		"next":   next,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	json.NewEncoder(w).Encode(v)
}

// MakeTracks builds n tracks with ids prefix-0..prefix-(n-1).
func MakeTracks(prefix string, n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range n {
		id := fmt.Sprintf("%s-%d", prefix, i)
		tracks[i] = models.Track{
			ID:      id,
			Name:    "Track " + id,
			Artists: []models.Artist{{Name: "Artist " + prefix}},
			URI:     "spotify:track:" + id,
		}
	}
	return tracks
}
