package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/shared"
)

// ErrRunNotFound is returned when a transfer run id is unknown.
var ErrRunNotFound = errors.New("transfer run not found")

// TransferRepository persists the transfer journal: one row per run plus the playlists each run created.
type TransferRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTransferRepository creates a new TransferRepository with the given database connection
func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db, now: time.Now}
}

// Create inserts a new run, generating its ID when empty.
func (r *TransferRepository) Create(run *models.TransferRun) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = r.now().UTC()
	}
	if run.Status == "" {
		run.Status = models.RunRunning
	}

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO transfer_runs (
			id, source_account, target_account, status, liked_songs,
			playlists_created, playlists_skipped, tracks_added, error_message,
			started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Source,
		run.Target,
		string(run.Status),
		run.LikedSongs,
		run.PlaylistsCreated,
		run.PlaylistsSkipped,
		run.TracksAdded,
		nullString(run.Error),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer run: %w", err)
	}

	return nil
}

// Update writes the run's status, counters, error and finish time.
func (r *TransferRepository) Update(run *models.TransferRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE transfer_runs
		SET status = ?, liked_songs = ?, playlists_created = ?, playlists_skipped = ?,
			tracks_added = ?, error_message = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		string(run.Status),
		run.LikedSongs,
		run.PlaylistsCreated,
		run.PlaylistsSkipped,
		run.TracksAdded,
		nullString(run.Error),
		run.FinishedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}

	return nil
}

// AddPlaylist records a playlist created on the target during a run.
func (r *TransferRepository) AddPlaylist(p models.TransferredPlaylist) error {
	if p.RunID == "" {
		return fmt.Errorf("validation failed: run id is required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC()
	}

	query := `
		INSERT INTO transferred_playlists (run_id, source_playlist_id, target_playlist_id, name, tracks, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, p.RunID, p.SourcePlaylistID, p.TargetPlaylistID, p.Name, p.Tracks, p.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert transferred playlist: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (r *TransferRepository) Get(id string) (*models.TransferRun, error) {
	query := `
		SELECT id, source_account, target_account, status, liked_songs, playlists_created,
			playlists_skipped, tracks_added, error_message, started_at, finished_at
		FROM transfer_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// List returns the most recent runs first. A non-positive limit returns every run.
func (r *TransferRepository) List(limit int) ([]*models.TransferRun, error) {
	query := `
		SELECT id, source_account, target_account, status, liked_songs, playlists_created,
			playlists_skipped, tracks_added, error_message, started_at, finished_at
		FROM transfer_runs
		ORDER BY started_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.TransferRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer runs: %w", err)
	}

	return runs, nil
}

// Playlists returns the playlists recorded for a run in creation order.
func (r *TransferRepository) Playlists(runID string) ([]models.TransferredPlaylist, error) {
	query := `
		SELECT run_id, source_playlist_id, target_playlist_id, name, tracks, created_at
		FROM transferred_playlists
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transferred playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.TransferredPlaylist
	for rows.Next() {
		var p models.TransferredPlaylist
		if err := rows.Scan(&p.RunID, &p.SourcePlaylistID, &p.TargetPlaylistID, &p.Name, &p.Tracks, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transferred playlist: %w", err)
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transferred playlists: %w", err)
	}

	return playlists, nil
}

func scanRun(row scanner) (*models.TransferRun, error) {
	var (
		run        models.TransferRun
		status     string
		errMessage sql.NullString
		finishedAt sql.NullTime
	)

	err := row.Scan(
		&run.ID,
		&run.Source,
		&run.Target,
		&status,
		&run.LikedSongs,
		&run.PlaylistsCreated,
		&run.PlaylistsSkipped,
		&run.TracksAdded,
		&errMessage,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transfer run: %w", err)
	}

	run.Status = models.RunStatus(status)
	run.Error = errMessage.String
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}

	return &run, nil
}
