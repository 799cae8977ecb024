package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists and
// their ordered entries.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

const playlistSelect = `
        SELECT p.id::TEXT, p.owner_id::TEXT, p.name, p.description,
            COALESCE(array_agg(pv.video_id::TEXT ORDER BY pv.position) FILTER (WHERE pv.video_id IS NOT NULL), '{}'),
            p.created_at, p.updated_at
        FROM playlists p
        LEFT JOIN playlist_videos pv ON pv.playlist_id = p.id`

const playlistGroup = ` GROUP BY p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at`

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.VideoIDs, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create stores an empty playlist. Duplicate names for the same owner conflict.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, p models.Playlist) error {
	if !validID(p.OwnerID) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return writeError(err, "insert playlist")
	}
	return nil
}

func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	if !validID(id) {
		return models.Playlist{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return findPlaylist(ctx, conn, id)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func findPlaylist(ctx context.Context, q rowQuerier, id string) (models.Playlist, error) {
	p, err := scanPlaylist(q.QueryRow(ctx, playlistSelect+` WHERE p.id = $1`+playlistGroup, id))
	if err != nil {
		return models.Playlist{}, readError(err, "select playlist")
	}
	return p, nil
}

// ListByOwner returns a user's playlists, oldest first.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	if !validID(ownerID) {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, playlistSelect+` WHERE p.owner_id = $1`+playlistGroup+
		` ORDER BY p.created_at ASC, p.id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// Update renames or redescribes a playlist.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, p models.Playlist) error {
	if !validID(p.ID) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlists SET name = $2, description = $3, updated_at = $4 WHERE id = $1
    `, p.ID, p.Name, p.Description, p.UpdatedAt)
	if err != nil {
		return writeError(err, "update playlist")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo appends the video at the next position inside a transaction.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string, at time.Time) (models.Playlist, error) {
	if !validID(playlistID, videoID) {
		return models.Playlist{}, ErrNotFound
	}

	return r.mutateEntries(ctx, playlistID, at, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO playlist_videos (playlist_id, video_id, position)
            SELECT $1, $2, COALESCE(MAX(position), 0) + 1
            FROM playlist_videos
            WHERE playlist_id = $1
        `, playlistID, videoID)
		if err != nil {
			return writeError(err, "insert playlist entry")
		}
		return nil
	})
}

// RemoveVideo drops the entry; ErrNotFound when the video was not in the playlist.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string, at time.Time) (models.Playlist, error) {
	if !validID(playlistID, videoID) {
		return models.Playlist{}, ErrNotFound
	}

	return r.mutateEntries(ctx, playlistID, at, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`,
			playlistID, videoID)
		if err != nil {
			return fmt.Errorf("delete playlist entry: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresPlaylistRepository) mutateEntries(ctx context.Context, playlistID string, at time.Time, mutate func(pgx.Tx) error) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `UPDATE playlists SET updated_at = $2 WHERE id = $1`, playlistID, at.UTC())
	if err != nil {
		return models.Playlist{}, fmt.Errorf("touch playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Playlist{}, ErrNotFound
	}

	if err := mutate(tx); err != nil {
		return models.Playlist{}, err
	}

	p, err := findPlaylist(ctx, tx, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Playlist{}, fmt.Errorf("commit playlist change: %w", err)
	}
	return p, nil
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
