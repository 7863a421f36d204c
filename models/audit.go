package models

import "time"

// AnonymousActor is recorded when a change is made without an authenticated identity.
const AnonymousActor = "anonymous"

// Audit is an immutable entry in the change log of a user record.
// UserID keeps pointing at the record after that record is deleted.
type Audit struct {
	ID      int64     `json:"id" db:"id"`
	Date    time.Time `json:"date" db:"date"`
	Message string    `json:"message" db:"message"`
	UserID  int64     `json:"user_id" db:"user_id"`
	Actor   string    `json:"actor" db:"actor"`
}
