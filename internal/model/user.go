package model

import "time"

// User identifies the owner of a persisted item collection.
type User struct {
	CreatedAt time.Time
	ID        string
	Name      string
}
