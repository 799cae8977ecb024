package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// NewPostgresStore wires every repository to the same connection pool.
func NewPostgresStore(pool db.Pool) Store {
	return Store{
		Users:         NewPostgresUserRepository(pool),
		Videos:        NewPostgresVideoRepository(pool),
		Comments:      NewPostgresCommentRepository(pool),
		Playlists:     NewPostgresPlaylistRepository(pool),
		Likes:         NewPostgresLikeRepository(pool),
		Subscriptions: NewPostgresSubscriptionRepository(pool),
		Tweets:        NewPostgresTweetRepository(pool),
	}
}

// validID reports whether every id can address a UUID column. Anything else matches no row,
// so callers answer ErrNotFound (or an empty result) without a round trip.
func validID(ids ...string) bool {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return false
		}
	}
	return true
}

// writeError maps constraint violations onto the repository sentinels.
func writeError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrConflict
		case "23503", "22P02":
			return ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func readError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id::TEXT, username, email, full_name, avatar_url, avatar_ref, cover_image_url,
        cover_image_ref, password_hash, refresh_token, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Avatar, &user.AvatarRef,
		&user.CoverImage, &user.CoverImageRef, &user.PasswordHash, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, avatar_url, avatar_ref, cover_image_url,
            cover_image_ref, password_hash, refresh_token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, user.ID, user.Username, user.Email, user.FullName, user.Avatar, user.AvatarRef, user.CoverImage,
		user.CoverImageRef, user.PasswordHash, user.RefreshToken, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return writeError(err, "insert user")
	}

	return nil
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	if !validID(id) {
		return models.User{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return models.User{}, readError(err, "select user by id")
	}
	return user, nil
}

// FindByUsername fetches a user by username, ignoring case.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if strings.TrimSpace(username) == "" {
		return models.User{}, ErrNotFound
	}
	return r.FindByUsernameOrEmail(ctx, username, "")
}

// FindByUsernameOrEmail fetches the user matching either identifier.
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE ($1 <> '' AND lower(username) = lower($1))
           OR ($2 <> '' AND lower(email) = lower($2))
        LIMIT 1
    `, username, email))
	if err != nil {
		return models.User{}, readError(err, "select user by username or email")
	}
	return user, nil
}

// Update modifies profile, credential and asset fields. The refresh token is left alone.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) error {
	if !validID(user.ID) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET username = $2, email = $3, full_name = $4, avatar_url = $5, avatar_ref = $6,
            cover_image_url = $7, cover_image_ref = $8, password_hash = $9, updated_at = $10
        WHERE id = $1
    `, user.ID, user.Username, user.Email, user.FullName, user.Avatar, user.AvatarRef,
		user.CoverImage, user.CoverImageRef, user.PasswordHash, user.UpdatedAt)
	if err != nil {
		return writeError(err, "update user")
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetRefreshToken replaces the stored refresh token. An empty token revokes the session.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	if !validID(userID) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET refresh_token = $2 WHERE id = $1`, userID, token)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PublicProfiles resolves the public projection for every known id. Unknown ids are omitted.
func (r *PostgresUserRepository) PublicProfiles(ctx context.Context, ids []string) (map[string]models.PublicProfile, error) {
	out := make(map[string]models.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id::TEXT, username, full_name, avatar_url
        FROM users
        WHERE id::TEXT = ANY($1)
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("query public profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      string
			profile models.PublicProfile
		)
		if err := rows.Scan(&id, &profile.Username, &profile.FullName, &profile.Avatar); err != nil {
			return nil, fmt.Errorf("scan public profile: %w", err)
		}
		out[id] = profile
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate public profiles: %w", err)
	}

	return out, nil
}

// AppendWatchHistory upserts the watched_at timestamp so a re-watched video moves to the end.
func (r *PostgresUserRepository) AppendWatchHistory(ctx context.Context, userID, videoID string, at time.Time) error {
	if !validID(userID, videoID) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, userID, videoID, at.UTC())
	if err != nil {
		return writeError(err, "upsert watch history")
	}
	return nil
}

// WatchHistory returns video ids in the order they were (last) watched.
func (r *PostgresUserRepository) WatchHistory(ctx context.Context, userID string) ([]string, error) {
	if !validID(userID) {
		return nil, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := conn.Query(ctx, `
        SELECT video_id::TEXT
        FROM watch_history
        WHERE user_id = $1
        ORDER BY watched_at ASC, video_id ASC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect watch history: %w", err)
	}
	return ids, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
