package domain

import (
	"context"
	"time"
)

type Book struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Title       string   `gorm:"size:200;not null;index" json:"title"`
	Author      string   `gorm:"size:100;not null;index" json:"author"`
	Description *string  `json:"description"`
	ISBN        *string  `gorm:"size:32;uniqueIndex" json:"isbn"`
	Price       *float64 `json:"price"`

	OwnerID    uint    `gorm:"not null;index" json:"ownerId"` // 创建后不可变
	FilePath   *string `gorm:"size:255" json:"filePath"`
	CoverImage *string `gorm:"size:255" json:"coverImage"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return "books" }

// BookFilter title/author 为大小写不敏感的子串匹配，同时给出时取交集
type BookFilter struct {
	Title  string
	Author string
}

type BookRepository interface {
	Create(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id uint) (*Book, error)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	List(ctx context.Context, f BookFilter, offset, limit int) ([]Book, int64, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]Book, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id uint) error
}
