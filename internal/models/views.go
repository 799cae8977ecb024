package models

import "time"

// PublicProfile is the restricted view of a user exposed next to content they created.
type PublicProfile struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// VideoView is a video joined one level to its owner's public profile.
type VideoView struct {
	Video
	CreatedBy PublicProfile `json:"createdBy"`
}

// CommentView is a comment joined to its author's public profile.
type CommentView struct {
	Comment
	CreatedBy PublicProfile `json:"createdBy"`
}

// TweetView is a tweet joined to its author's public profile.
type TweetView struct {
	Tweet
	CreatedBy PublicProfile `json:"createdBy"`
}

// PlaylistView is a playlist joined to its owner and to each referenced video (which is
// itself joined to its own owner). Expansion stops there.
type PlaylistView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CreatedBy   PublicProfile `json:"createdBy"`
	Videos      []VideoView   `json:"videos"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ChannelProfile is the public page of a user including subscription counters.
type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage,omitempty"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// ChannelSummary lists a channel (or subscriber) in subscription listings.
type ChannelSummary struct {
	ID string `json:"id"`
	PublicProfile
	SubscribedAt time.Time `json:"subscribedAt"`
}

// DashboardStats aggregates a channel's counters. Every field is zero when nothing matches.
type DashboardStats struct {
	TotalViews       int64 `json:"totalViews"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}

// LikeStatus reports the result of a like toggle.
type LikeStatus struct {
	TargetType LikeTarget `json:"targetType"`
	TargetID   string     `json:"targetId"`
	IsLiked    bool       `json:"isLiked"`
}

// SubscriptionStatus reports the result of a subscription toggle.
type SubscriptionStatus struct {
	ChannelID    string `json:"channelId"`
	IsSubscribed bool   `json:"isSubscribed"`
}
