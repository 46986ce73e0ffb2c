package model

import (
	"encoding/json"
	"time"
)

type Reply struct {
	Id        string     `json:"id,omitempty"`
	Author    *Author    `json:"author" validate:"required"`
	Content   string     `json:"content" validate:"required"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Post doubles as the inbound draft: Id and Timestamp are empty until the post is persisted.
type Post struct {
	Username  string          `json:"username" validate:"required"`
	Content   string          `json:"content" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Id        string          `json:"id,omitempty"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	Embed     *Embed          `json:"embed,omitempty"`
	Author    *Author         `json:"author,omitempty"`
	Replies   []*Reply        `json:"replies" validate:"omitempty,dive,required"`
	Style     json.RawMessage `json:"style,omitempty"`
}
