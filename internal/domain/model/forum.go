package model

import "time"

type ForumPost struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`                // Raw markdown
	ContentHTML string    `json:"content_html,omitempty"` // Sanitized, rendered at read time
	Hidden      bool      `json:"hidden"`
	ReportCount int       `json:"report_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	AuthorUsername *string        `json:"author_username,omitempty"` // For display
	Comments       []ForumComment `json:"comments,omitempty"`
	CommentCount   int            `json:"comment_count"`
}

type ForumComment struct {
	ID          string    `json:"id"`
	PostID      string    `json:"post_id"`
	AuthorID    string    `json:"author_id"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	AuthorUsername *string `json:"author_username,omitempty"`
}
