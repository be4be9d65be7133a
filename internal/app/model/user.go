package model

import (
	"time"
)

type UserRole string

const (
	RoleUser       UserRole = "user"        // regular user, can rate stores
	RoleAdmin      UserRole = "admin"       // manages users and stores
	RoleStoreOwner UserRole = "store_owner" // sees ratings for owned stores
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleStoreOwner:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(60);not null;index" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`                                 // bcrypt hash, never serialized
	Address      string    `gorm:"type:varchar(400);not null" json:"address"`
	Role         UserRole  `gorm:"type:varchar(20);default:'user';index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Stores []Store `gorm:"foreignKey:OwnerID" json:"-"` // stores owned by a store_owner
}

func (User) TableName() string {
	return "users"
}

// PublicUser is the user shape returned by the API.
type PublicUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// UserDetail adds the average rating across the stores the user owns.
// AverageRating is nil for users without rated stores.
type UserDetail struct {
	PublicUser
	AverageRating *float64 `json:"average_rating"`
}
