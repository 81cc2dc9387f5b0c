package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/shared"
	tu "github.com/desertthunder/spotify-sync/internal/testing"
)

func newTestClient(baseURL string) *SpotifyClient {
	return NewSpotifyClient(context.Background(), "test-token", ClientOpts{BaseURL: baseURL})
}

func TestSpotifyClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := NewSpotifyClient(context.Background(), "tok", ClientOpts{})
			if c.baseURL != SpotifyBaseURL {
				t.Errorf("expected base URL %s, got %s", SpotifyBaseURL, c.baseURL)
			}
			if c.limiter != nil {
				t.Error("expected no limiter when rate limit is 0")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			c := NewSpotifyClient(context.Background(), "tok", ClientOpts{BaseURL: "http://example.com/v1/"})
			if c.baseURL != "http://example.com/v1" {
				t.Errorf("unexpected base URL %s", c.baseURL)
			}
		})

		t.Run("With Rate Limit", func(t *testing.T) {
			c := NewSpotifyClient(context.Background(), "tok", ClientOpts{RateLimit: 5})
			if c.limiter == nil {
				t.Fatal("expected limiter to be configured")
			}
		})
	})

	t.Run("Bearer Authorization", func(t *testing.T) {
		fake := tu.NewFakeSpotify()
		defer fake.Close()

		if _, err := newTestClient(fake.URL()).CurrentUser(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reqs := fake.RequestsFor(http.MethodGet, "/me")
		if len(reqs) != 1 {
			t.Fatalf("expected 1 request, got %d", len(reqs))
		}
		if reqs[0].Auth != "Bearer test-token" {
			t.Errorf("expected bearer header, got %q", reqs[0].Auth)
		}
	})

	t.Run("LikedSongs", func(t *testing.T) {
		t.Run("Paginates Until Empty Page", func(t *testing.T) {
			fake := tu.NewFakeSpotify()
			defer fake.Close()
			fake.Liked = tu.MakeTracks("liked", 123)

			tracks, err := newTestClient(fake.URL()).LikedSongs(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(tracks) != 123 {
				t.Fatalf("expected 123 tracks, got %d", len(tracks))
			}
			if tracks[0].ID != "liked-0" || tracks[122].ID != "liked-122" {
				t.Errorf("tracks out of order: first %s, last %s", tracks[0].ID, tracks[122].ID)
			}

			reqs := fake.RequestsFor(http.MethodGet, "/me/tracks")
			if len(reqs) != 4 {
				t.Fatalf("expected 4 requests, got %d", len(reqs))
			}
			for i, offset := range []int{0, 50, 100, 150} {
				want := fmt.Sprintf("limit=50&offset=%d", offset)
				if reqs[i].Query != want {
					t.Errorf("request %d: expected query %q, got %q", i, want, reqs[i].Query)
				}
			}
		})

		t.Run("Empty Library", func(t *testing.T) {
			fake := tu.NewFakeSpotify()
			defer fake.Close()

			tracks, err := newTestClient(fake.URL()).LikedSongs(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 0 {
				t.Errorf("expected no tracks, got %d", len(tracks))
			}
			if n := len(fake.RequestsFor(http.MethodGet, "/me/tracks")); n != 1 {
				t.Errorf("expected 1 request, got %d", n)
			}
		})
	})

	t.Run("Playlists", func(t *testing.T) {
		t.Run("Full Page With Null Next", func(t *testing.T) {
			requests := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				items := make([]models.SimplifiedPlaylist, 50)
				for i := range items {
					items[i] = models.SimplifiedPlaylist{ID: fmt.Sprintf("p%d", i), Name: "Playlist"}
				}
				json.NewEncoder(w).Encode(map[string]any{"items": items, "next": nil, "total": 50})
			}))
			defer server.Close()

			playlists, err := newTestClient(server.URL).Playlists(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(playlists) != 50 {
				t.Errorf("expected 50 playlists, got %d", len(playlists))
			}
			if requests != 1 {
				t.Errorf("expected 1 request, got %d", requests)
			}
		})

		t.Run("Follows Next", func(t *testing.T) {
			fake := tu.NewFakeSpotify()
			defer fake.Close()
			for i := range 120 {
				fake.Playlists = append(fake.Playlists, models.SimplifiedPlaylist{ID: fmt.Sprintf("p%d", i), Name: "Playlist"})
			}

			playlists, err := newTestClient(fake.URL()).Playlists(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(playlists) != 120 {
				t.Errorf("expected 120 playlists, got %d", len(playlists))
			}
			if n := len(fake.RequestsFor(http.MethodGet, "/me/playlists")); n != 3 {
				t.Errorf("expected 3 requests, got %d", n)
			}
		})

		t.Run("Null Public And Description", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"items":[{"id":"p1","name":"Collab","description":null,"public":null}],"next":null}`)
			}))
			defer server.Close()

			playlists, err := newTestClient(server.URL).Playlists(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(playlists) != 1 {
				t.Fatalf("expected 1 playlist, got %d", len(playlists))
			}
			if playlists[0].Public {
				t.Error("null public should decode as private")
			}
			if playlists[0].Description != nil {
				t.Error("null description should decode as nil")
			}
		})
	})

	t.Run("PlaylistTracks", func(t *testing.T) {
		t.Run("Skips Null Tracks", func(t *testing.T) {
			var path, query string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path, query = r.URL.Path, r.URL.RawQuery
				fmt.Fprint(w, `{"items":[
					{"track":{"id":"a","name":"A","artists":[{"name":"X"}],"uri":"spotify:track:a"}},
					{"track":null},
					{"track":{"id":"b","name":"B","artists":[],"uri":"spotify:track:b"}}
				],"next":null}`)
			}))
			defer server.Close()

			tracks, err := newTestClient(server.URL).PlaylistTracks(context.Background(), "pl1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}
			if tracks[0].URI != "spotify:track:a" || tracks[1].URI != "spotify:track:b" {
				t.Errorf("unexpected tracks: %+v", tracks)
			}
			if path != "/playlists/pl1/tracks" {
				t.Errorf("unexpected path %s", path)
			}
			if query != "limit=100&offset=0" {
				t.Errorf("unexpected query %s", query)
			}
		})

		t.Run("Pages Of 100", func(t *testing.T) {
			fake := tu.NewFakeSpotify()
			defer fake.Close()
			fake.PlaylistTracks["pl1"] = tu.MakeTracks("pt", 230)

			tracks, err := newTestClient(fake.URL()).PlaylistTracks(context.Background(), "pl1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 230 {
				t.Errorf("expected 230 tracks, got %d", len(tracks))
			}
			if n := len(fake.RequestsFor(http.MethodGet, "/playlists/pl1/tracks")); n != 3 {
				t.Errorf("expected 3 requests, got %d", n)
			}
		})
	})

	t.Run("LibraryStats", func(t *testing.T) {
		fake := tu.NewFakeSpotify()
		defer fake.Close()
		fake.Liked = tu.MakeTracks("liked", 7)
		fake.Playlists = []models.SimplifiedPlaylist{{ID: "a"}, {ID: "b"}, {ID: "c"}}

		stats, err := newTestClient(fake.URL()).LibraryStats(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := models.LibraryStats{LikedSongs: 7, Playlists: 3, TotalSongs: 7}
		if stats != want {
			t.Errorf("expected %+v, got %+v", want, stats)
		}

		for _, path := range []string{"/me/tracks", "/me/playlists"} {
			reqs := fake.RequestsFor(http.MethodGet, path)
			if len(reqs) != 1 || reqs[0].Query != "limit=1" {
				t.Errorf("expected a single limit=1 request to %s, got %+v", path, reqs)
			}
		}
	})

	t.Run("AddLikedSongs", func(t *testing.T) {
		t.Run("Batches Of 50", func(t *testing.T) {
			fake := tu.NewFakeSpotify()
			defer fake.Close()

			ids := make([]string, 120)
			for i := range ids {
				ids[i] = fmt.Sprintf("id-%d", i)
			}

			if err := newTestClient(fake.URL()).AddLikedSongs(context.Background(), ids); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			batches := fake.SavedBatches()
			if len(batches) != 3 {
				t.Fatalf("expected 3 batches, got %d", len(batches))
			}
			for i, size := range []int{50, 50, 20} {
				if len(batches[i]) != size {
					t.Errorf("batch %d: expected %d ids, got %d", i, size, len(batches[i]))
				}
			}

			saved := fake.SavedTrackIDs()
			for i := range ids {
				if saved[i] != ids[i] {
					t.Fatalf("ids out of order at %d: %s != %s", i, saved[i], ids[i])
				}
			}
		})

		t.Run("Empty Input", func(t *testing.T) {
			fake := tu.NewFakeSpotify()
			defer fake.Close()

			if err := newTestClient(fake.URL()).AddLikedSongs(context.Background(), nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if n := len(fake.AllRequests()); n != 0 {
				t.Errorf("expected no requests, got %d", n)
			}
		})

		t.Run("Stops On First Failure", func(t *testing.T) {
			fake := tu.NewFakeSpotify()
			defer fake.Close()
			fake.Fail["PUT /me/tracks"] = http.StatusForbidden

			err := newTestClient(fake.URL()).AddLikedSongs(context.Background(), make([]string, 120))

			var apiErr *shared.RemoteAPIError
			if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
				t.Fatalf("expected 403 RemoteAPIError, got %v", err)
			}
			if n := len(fake.RequestsFor(http.MethodPut, "/me/tracks")); n != 1 {
				t.Errorf("expected 1 request, got %d", n)
			}
		})
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		fake := tu.NewFakeSpotify()
		defer fake.Close()
		fake.UserID = "owner-1"

		id, err := newTestClient(fake.URL()).CreatePlaylist(context.Background(), "Road Trip", "long drives", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "created-1" {
			t.Errorf("expected id created-1, got %s", id)
		}

		created := fake.CreatedPlaylists()
		if len(created) != 1 {
			t.Fatalf("expected 1 created playlist, got %d", len(created))
		}
		p := created[0]
		if p.Owner != "owner-1" || p.Name != "Road Trip" || p.Description != "long drives" || !p.Public {
			t.Errorf("unexpected playlist: %+v", p)
		}

		reqs := fake.AllRequests()
		if len(reqs) != 2 || reqs[0].Path != "/me" || reqs[1].Path != "/users/owner-1/playlists" {
			t.Errorf("expected profile lookup then create, got %+v", reqs)
		}
	})

	t.Run("AddTracksToPlaylist", func(t *testing.T) {
		fake := tu.NewFakeSpotify()
		defer fake.Close()
		client := newTestClient(fake.URL())

		id, err := client.CreatePlaylist(context.Background(), "Big", "", false)
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		uris := make([]string, 250)
		for i := range uris {
			uris[i] = fmt.Sprintf("spotify:track:%d", i)
		}

		if err := client.AddTracksToPlaylist(context.Background(), id, uris); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reqs := fake.RequestsFor(http.MethodPost, "/playlists/"+id+"/tracks")
		if len(reqs) != 3 {
			t.Fatalf("expected 3 requests, got %d", len(reqs))
		}
		for i, size := range []int{100, 100, 50} {
			var body struct {
				URIs []string `json:"uris"`
			}
			if err := json.Unmarshal([]byte(reqs[i].Body), &body); err != nil {
				t.Fatalf("invalid request body: %v", err)
			}
			if len(body.URIs) != size {
				t.Errorf("batch %d: expected %d uris, got %d", i, size, len(body.URIs))
			}
		}

		got := fake.CreatedPlaylists()[0].URIs
		for i := range uris {
			if got[i] != uris[i] {
				t.Fatalf("uris out of order at %d", i)
			}
		}
	})

	t.Run("Errors", func(t *testing.T) {
		t.Run("Non-Success Status", func(t *testing.T) {
			fake := tu.NewFakeSpotify()
			defer fake.Close()
			fake.Fail["GET /me/tracks"] = http.StatusInternalServerError

			_, err := newTestClient(fake.URL()).LikedSongs(context.Background())

			var apiErr *shared.RemoteAPIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected RemoteAPIError, got %v", err)
			}
			if apiErr.Status != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", apiErr.Status)
			}
			if !strings.Contains(apiErr.Body, "forced failure") {
				t.Errorf("expected body to be captured, got %q", apiErr.Body)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected error to unwrap to ErrAPIRequest")
			}
		})

		t.Run("Malformed JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"items": [`)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Playlists(context.Background())
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}

			var apiErr *shared.RemoteAPIError
			if errors.As(err, &apiErr) {
				t.Error("decode failures should not be RemoteAPIError")
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			client := NewSpotifyClient(context.Background(), "tok", ClientOpts{
				BaseURL:    "http://example.invalid",
				HTTPClient: tu.StaticTransport{Err: errors.New("connection failed")}.Client(),
			})

			_, err := client.CurrentUser(context.Background())
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "connection failed") {
				t.Errorf("expected transport error in message, got %v", err)
			}
		})

		t.Run("Unreadable Body", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: tu.BrokenBody{}}
			client := NewSpotifyClient(context.Background(), "tok", ClientOpts{
				BaseURL:    "http://example.invalid",
				HTTPClient: tu.StaticTransport{Response: resp}.Client(),
			})

			_, err := client.CurrentUser(context.Background())
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "read failed") {
				t.Errorf("expected read error in message, got %v", err)
			}
		})

		t.Run("Cancelled While Pacing", func(t *testing.T) {
			client := NewSpotifyClient(context.Background(), "tok", ClientOpts{BaseURL: "http://example.invalid", RateLimit: 1})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := client.CurrentUser(ctx); !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})
	})
}
