package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email           string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password        string    `gorm:"not null;column:password" json:"-"`
	FirstName       string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName        string    `gorm:"not null;column:last_name" json:"last_name"`
	Phone           string    `gorm:"column:phone" json:"phone,omitempty"`
	Role            string    `gorm:"not null;default:'USER';column:role" json:"role"`
	Status          string    `gorm:"not null;default:'ACTIVE';column:status" json:"status"`
	AvatarBucketKey string    `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key,omitempty"`
	AvatarURL       string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
