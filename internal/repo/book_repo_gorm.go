package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-gin-bookstore/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookRepo) FindByID(ctx context.Context, id uint) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *BookRepo) FindByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).First(&b, "isbn = ?", isbn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

// List 统计在分页前，排序固定按 id 升序保证翻页稳定
func (r *BookRepo) List(ctx context.Context, f domain.BookFilter, offset, limit int) ([]domain.Book, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Book{})
	if s := strings.TrimSpace(f.Title); s != "" {
		tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(f.Author); s != "" {
		tx = tx.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var books []domain.Book
	if err := tx.Order("id").Offset(offset).Limit(limit).Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *BookRepo) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&books).Error
	return books, err
}

func (r *BookRepo) Update(ctx context.Context, b *domain.Book) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Book{}).Error
}
