package model

import "time"

// Music represents one purchasable listing in the marketplace catalog.
type Music struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Price            float64 `json:"price"`
	Category         string  `json:"category"`
	ArtistUsername   string  `json:"artistUsername"` // owning artist, set on upload, never reassigned
	AlbumName        string  `json:"albumName,omitempty"`
	Genre            string  `json:"genre,omitempty"`
	ReleaseYear      int     `json:"releaseYear,omitempty"`
	ImageURL         string  `json:"imageUrl,omitempty"`
	AudioFilePath    string  `json:"-"` // object key of the original audio, not exposed directly
	OriginalFileName string  `json:"originalFileName,omitempty"`

	// Rating cache, recomputed from the live review set on every review mutation.
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`

	// Moderation group: the three fields are set and cleared together.
	IsFlagged           bool       `json:"isFlagged"`
	FlaggedAt           *time.Time `json:"flaggedAt,omitempty"`
	FlaggedByCustomerID *int64     `json:"flaggedByCustomerId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
