package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

var likeTargetColumns = map[models.LikeTarget]string{
	models.LikeTargetVideo:   "video_id",
	models.LikeTargetComment: "comment_id",
	models.LikeTargetTweet:   "tweet_id",
}

func (r *PostgresLikeRepository) Find(ctx context.Context, userID string, target models.LikeTarget, targetID string) (models.Like, error) {
	if !validID(userID, targetID) {
		return models.Like{}, ErrNotFound
	}

	column, ok := likeTargetColumns[target]
	if !ok {
		return models.Like{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	like := models.Like{LikedBy: userID, TargetType: target, TargetID: targetID}
	err = conn.QueryRow(ctx, `
        SELECT id::TEXT, created_at
        FROM likes
        WHERE liked_by = $1 AND `+column+` = $2
    `, userID, targetID).Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		return models.Like{}, readError(err, "select like")
	}
	return like, nil
}

// Create stores a like. A missing target surfaces as ErrNotFound, a repeated like as ErrConflict.
func (r *PostgresLikeRepository) Create(ctx context.Context, like models.Like) error {
	if !validID(like.LikedBy, like.TargetID) {
		return ErrNotFound
	}

	column, ok := likeTargetColumns[like.TargetType]
	if !ok {
		return fmt.Errorf("unsupported like target %q", like.TargetType)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, target_type, `+column+`, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, like.ID, like.LikedBy, string(like.TargetType), like.TargetID, like.CreatedAt)
	if err != nil {
		return writeError(err, "insert like")
	}
	return nil
}

func (r *PostgresLikeRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LikedVideoIDs lists the videos a user liked, most recent like first.
func (r *PostgresLikeRepository) LikedVideoIDs(ctx context.Context, userID string) ([]string, error) {
	if !validID(userID) {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT video_id::TEXT
        FROM likes
        WHERE liked_by = $1 AND video_id IS NOT NULL
        ORDER BY created_at DESC, id DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect liked videos: %w", err)
	}
	return ids, nil
}

// CountForOwnerVideos counts likes across every video the owner uploaded.
func (r *PostgresLikeRepository) CountForOwnerVideos(ctx context.Context, ownerID string) (int64, error) {
	if !validID(ownerID) {
		return 0, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var n int64
	err = conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        WHERE v.owner_id = $1
    `, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count video likes: %w", err)
	}
	return n, nil
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

const subscriptionColumns = `id::TEXT, subscriber_id::TEXT, channel_id::TEXT, created_at`

func scanSubscription(row pgx.Row) (models.Subscription, error) {
	var s models.Subscription
	err := row.Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.CreatedAt)
	return s, err
}

func (r *PostgresSubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error) {
	if !validID(subscriberID, channelID) {
		return models.Subscription{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	s, err := scanSubscription(conn.QueryRow(ctx, `
        SELECT `+subscriptionColumns+`
        FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID))
	if err != nil {
		return models.Subscription{}, readError(err, "select subscription")
	}
	return s, nil
}

func (r *PostgresSubscriptionRepository) Create(ctx context.Context, s models.Subscription) error {
	if !validID(s.SubscriberID, s.ChannelID) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, s.ID, s.SubscriberID, s.ChannelID, s.CreatedAt)
	if err != nil {
		return writeError(err, "insert subscription")
	}
	return nil
}

func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

func (r *PostgresSubscriptionRepository) CountSubscriptions(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PostgresSubscriptionRepository) count(ctx context.Context, sql, id string) (int64, error) {
	if !validID(id) {
		return 0, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var n int64
	if err := conn.QueryRow(ctx, sql, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return n, nil
}

// ListSubscribers returns the channel's subscribers, most recent first.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error) {
	return r.list(ctx, "channel_id", channelID)
}

// ListSubscriptions returns the channels a user follows, most recent first.
func (r *PostgresSubscriptionRepository) ListSubscriptions(ctx context.Context, subscriberID string) ([]models.Subscription, error) {
	return r.list(ctx, "subscriber_id", subscriberID)
}

func (r *PostgresSubscriptionRepository) list(ctx context.Context, column, id string) ([]models.Subscription, error) {
	if !validID(id) {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+subscriptionColumns+`
        FROM subscriptions
        WHERE `+column+` = $1
        ORDER BY created_at DESC, id DESC
    `, id)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

var (
	_ LikeRepository         = (*PostgresLikeRepository)(nil)
	_ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
)
