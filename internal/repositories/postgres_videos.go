package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for uploaded videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id::TEXT, owner_id::TEXT, video_url, video_ref, thumbnail_url, thumbnail_ref, title,
        description, duration_seconds, views, is_published, created_at, updated_at`

// sortColumns is the only source of ORDER BY text; user input never reaches the query.
var sortColumns = map[query.SortField]string{
	query.SortCreatedAt: "created_at",
	query.SortViews:     "views",
	query.SortDuration:  "duration_seconds",
	query.SortTitle:     "title",
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.VideoFile, &v.VideoFileRef, &v.Thumbnail, &v.ThumbnailRef, &v.Title,
		&v.Description, &v.DurationSeconds, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func collectVideos(rows pgx.Rows) ([]models.Video, error) {
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, v models.Video) error {
	if !validID(v.OwnerID) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_url, video_ref, thumbnail_url, thumbnail_ref, title,
            description, duration_seconds, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, v.ID, v.OwnerID, v.VideoFile, v.VideoFileRef, v.Thumbnail, v.ThumbnailRef, v.Title,
		v.Description, v.DurationSeconds, v.Views, v.IsPublished, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return writeError(err, "insert video")
	}
	return nil
}

// FindByID fetches a single video.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	if !validID(id) {
		return models.Video{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	v, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		return models.Video{}, readError(err, "select video")
	}
	return v, nil
}

// FindByIDs returns the known videos keyed by id.
func (r *PostgresVideoRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error) {
	out := make(map[string]models.Video, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT `+videoColumns+` FROM videos WHERE id::TEXT = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query videos by id: %w", err)
	}
	videos, err := collectVideos(rows)
	if err != nil {
		return nil, err
	}
	for _, v := range videos {
		out[v.ID] = v
	}
	return out, nil
}

// escapeLike neutralises LIKE metacharacters so search text is matched literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search applies the filter's text, owner and visibility constraints and returns one page.
func (r *PostgresVideoRepository) Search(ctx context.Context, filter query.VideoFilter) ([]models.Video, error) {
	if filter.OwnerID != "" && !validID(filter.OwnerID) {
		return nil, nil
	}
	if !validID(filter.ViewerID) {
		filter.ViewerID = ""
	}

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if text := strings.TrimSpace(filter.Text); text != "" {
		p := arg("%" + escapeLike(text) + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}
	if filter.OwnerID != "" {
		conds = append(conds, "owner_id = "+arg(filter.OwnerID))
	}
	if filter.ViewerID != "" {
		conds = append(conds, "(is_published OR owner_id = "+arg(filter.ViewerID)+")")
	} else {
		conds = append(conds, "is_published")
	}

	column, ok := sortColumns[filter.Sort.Field]
	if !ok {
		column = sortColumns[query.SortCreatedAt]
	}
	direction := "DESC"
	if filter.Sort.Direction == query.Asc {
		direction = "ASC"
	}

	sql := `SELECT ` + videoColumns + ` FROM videos WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction) +
		" LIMIT " + arg(filter.Page.Limit) + " OFFSET " + arg(filter.Page.Offset())

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	return collectVideos(rows)
}

// ListByOwner returns every video of a channel, newest first.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	if !validID(ownerID) {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query channel videos: %w", err)
	}
	return collectVideos(rows)
}

// Update writes the mutable video fields.
func (r *PostgresVideoRepository) Update(ctx context.Context, v models.Video) error {
	if !validID(v.ID) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET video_url = $2, video_ref = $3, thumbnail_url = $4, thumbnail_ref = $5, title = $6,
            description = $7, duration_seconds = $8, is_published = $9, updated_at = $10
        WHERE id = $1
    `, v.ID, v.VideoFile, v.VideoFileRef, v.Thumbnail, v.ThumbnailRef, v.Title,
		v.Description, v.DurationSeconds, v.IsPublished, v.UpdatedAt)
	if err != nil {
		return writeError(err, "update video")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter atomically and returns the updated row.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) (models.Video, error) {
	if !validID(id) {
		return models.Video{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	v, err := scanVideo(conn.QueryRow(ctx, `
        UPDATE videos SET views = views + 1 WHERE id = $1
        RETURNING `+videoColumns, id))
	if err != nil {
		return models.Video{}, readError(err, "increment video views")
	}
	return v, nil
}

// Delete removes a video. Comments, likes, playlist entries and history rows cascade.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Totals returns the number of videos a channel owns and the sum of their views.
func (r *PostgresVideoRepository) Totals(ctx context.Context, ownerID string) (int64, int64, error) {
	if !validID(ownerID) {
		return 0, 0, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count, views int64
	err = conn.QueryRow(ctx, `
        SELECT COUNT(*), COALESCE(SUM(views), 0)::BIGINT
        FROM videos
        WHERE owner_id = $1
    `, ownerID).Scan(&count, &views)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate channel videos: %w", err)
	}
	return count, views, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
