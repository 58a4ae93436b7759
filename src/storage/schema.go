package storage

import "time"

// Setting is one persisted key/value pair
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Like is a recommendation the user marked, keyed by its identity key
type Like struct {
	Key       string      `json:"key" db:"key"`
	UserID    string      `json:"user_id" db:"user_id"`
	Type      string      `json:"type" db:"type"`
	Title     string      `json:"title" db:"title"`
	Venue     string      `json:"venue" db:"venue"`
	Payload   JSONPayload `json:"payload" db:"payload"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
