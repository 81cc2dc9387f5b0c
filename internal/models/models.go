// package models defines the data model for the library transfer tool
package models

import (
	"strings"
	"time"
)

// TokenRecord holds the OAuth tokens for one account.
//
// Records are never refreshed in place; a new login replaces the record wholesale.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    *int64 `json:"expires_at,omitempty"` // UTC epoch seconds
}

// NewTokenRecord stamps ExpiresAt as now + expiresIn.
func NewTokenRecord(access, refresh string, expiresIn int64, now time.Time) TokenRecord {
	expiresAt := now.UTC().Unix() + expiresIn
	return TokenRecord{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		ExpiresAt:    &expiresAt,
	}
}

// Expired reports whether the record's expiry is known and in the past.
func (t TokenRecord) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.UTC().Unix() >= *t.ExpiresAt
}

// Expiry returns ExpiresAt as a time, or the zero time when unknown.
func (t TokenRecord) Expiry() time.Time {
	if t.ExpiresAt == nil {
		return time.Time{}
	}
	return time.Unix(*t.ExpiresAt, 0).UTC()
}

// TokenDocument is the on-disk token store.
type TokenDocument struct {
	Accounts map[string]TokenRecord `json:"accounts"`
}

// Artist is a track credit.
type Artist struct {
	Name string `json:"name"`
}

// Track is a saved or playlist track.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	URI     string   `json:"uri"` // spotify:track:<id>
}

// ArtistNames joins the track's artist names with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// SimplifiedPlaylist is a playlist as listed by the playlists endpoint.
type SimplifiedPlaylist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Public      bool    `json:"public"`
}

// DescriptionOrEmpty dereferences Description.
func (p SimplifiedPlaylist) DescriptionOrEmpty() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// UserProfile is the authenticated user.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// LibraryStats is a preview snapshot of an account.
//
// TotalSongs currently equals LikedSongs; playlist tracks are not counted.
type LibraryStats struct {
	LikedSongs int `json:"liked_songs"`
	Playlists  int `json:"playlists"`
	TotalSongs int `json:"total_songs"`
}

// NewLibraryStats builds stats from the two totals reported by the API.
func NewLibraryStats(likedSongs, playlists int) LibraryStats {
	return LibraryStats{
		LikedSongs: likedSongs,
		Playlists:  playlists,
		TotalSongs: likedSongs,
	}
}
