package dto

import "time"

type Author struct {
	ID   ID     `json:"id"`
	Nama string `json:"name"`
	Role string `json:"role,omitempty"`
}

type Thread struct {
	ID         ID        `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Author     Author    `json:"author"`
	Category   string    `json:"category,omitempty"`
	IsPinned   bool      `json:"is_pinned"`
	IsLocked   bool      `json:"is_locked"`
	IsPrivate  bool      `json:"is_private"`
	ReplyCount int       `json:"reply_count"`
	ViewCount  int       `json:"view_count"`
	LikeCount  int       `json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Replies    []Reply   `json:"replies,omitempty"`
}

type Reply struct {
	ID        ID        `json:"id"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Pending marks a reply inserted locally that the backend has not confirmed yet.
	Pending bool `json:"pending,omitempty"`
}

type ThreadFilter struct {
	Category string
	Search   string
	Private  *bool
	Page     int
	Limit    int
}

type CreateThreadRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category,omitempty"`
	IsPrivate bool   `json:"is_private"`
}

type UpdateThreadRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
}

type CreateReplyRequest struct {
	Content string `json:"content"`
}

type ModerationRequest struct {
	Value bool `json:"value"`
}
