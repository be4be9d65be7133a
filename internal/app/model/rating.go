package model

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a user's score for a store. A user has at most one rating per store.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store,priority:1" json:"user_id"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store,priority:2;index" json:"store_id"`
	Rating    int       `gorm:"not null;check:chk_ratings_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Store *Store `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Rating) TableName() string {
	return "ratings"
}

// ValidRating reports whether v is within the accepted star range.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// StoreRating is a rating row as shown to the store's owner.
type StoreRating struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}
