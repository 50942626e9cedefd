package model

import "time"

// Review is a customer rating attached to a catalog record.
// One review per customer per record.
type Review struct {
	ID               int64     `json:"id"`
	MusicID          int64     `json:"musicId"`
	CustomerUsername string    `json:"customerUsername"`
	Rating           int       `json:"rating"` // 1..5
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
