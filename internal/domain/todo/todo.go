package todo

import "time"

type Todo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"` // ownership is implied by the authenticated request
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
