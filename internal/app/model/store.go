package model

import (
	"time"
)

type Store struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Address   string    `gorm:"type:varchar(400);not null" json:"address"`
	OwnerID   *uint     `gorm:"index" json:"owner_id"` // nullable, must reference a store_owner
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreWithStats is a store row joined with its owner's name and rating aggregates.
type StoreWithStats struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	OwnerID       *uint     `json:"owner_id"`
	OwnerName     *string   `json:"owner_name"`
	AverageRating *float64  `json:"average_rating"` // nil when the store has no ratings
	RatingCount   int64     `json:"rating_count"`
	UserRating    *int      `json:"user_rating,omitempty"` // caller's own rating, only for authenticated listings
	CreatedAt     time.Time `json:"created_at"`
}

// PlatformStats holds row totals for the admin dashboard.
type PlatformStats struct {
	TotalUsers   int64 `json:"total_users"`
	TotalStores  int64 `json:"total_stores"`
	TotalRatings int64 `json:"total_ratings"`
}
