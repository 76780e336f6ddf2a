package user

import "time"

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
}
