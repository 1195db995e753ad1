package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string `gorm:"size:50;not null" json:"username"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Role         string `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"
	IsActive     bool   `gorm:"not null;default:true" json:"isActive"`

	ResetToken        *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Authenticatable 软删或停用的账号不可作为请求身份
func (u *User) Authenticatable() bool {
	return u.IsActive && !u.DeletedAt.Valid
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	List(ctx context.Context, q string, withDeleted bool, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id uint) error
}
