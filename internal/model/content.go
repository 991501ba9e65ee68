package model

import "time"

// Content record kinds. Closed set; anything else is a programming error.
const (
	ContentKindBlog         = "blog"
	ContentKindLinkedIn     = "linkedin"
	ContentKindYouTube      = "youtube"
	ContentKindTweet        = "tweet"
	ContentKindImage        = "image"
	ContentKindLinkedInPost = "linkedin-post"
)

// ContentRecord is one entry in a user's append-only generation history.
// Records are immutable once appended; ordering is insertion order.
type ContentRecord struct {
	ID             int64     `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"-"`
	Kind           string    `db:"kind" json:"type"`
	Topic          string    `db:"topic" json:"topic"`
	Content        string    `db:"content" json:"content"`
	ImageData      string    `db:"image_data" json:"imageData,omitempty"`
	LinkedInPostID string    `db:"linkedin_post_id" json:"linkedinPostId,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
