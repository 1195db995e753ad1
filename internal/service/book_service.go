package service

import (
	"context"
	"strings"

	"go-gin-bookstore/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type BookInput struct {
	Title       string   `json:"title" binding:"required,min=1,max=200"`
	Author      string   `json:"author" binding:"required,min=1,max=100"`
	Description *string  `json:"description"`
	ISBN        *string  `json:"isbn"`
	Price       *float64 `json:"price"`
}

// BookPatch 部分更新：字段显式枚举，逐字段合并，nil 表示不改
type BookPatch struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Author      *string  `json:"author" binding:"omitempty,min=1,max=100"`
	Description *string  `json:"description"`
	ISBN        *string  `json:"isbn"`
	Price       *float64 `json:"price"`
}

type PageResult struct {
	Items []domain.Book `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Pages int           `json:"pages"`
}

type BookService struct {
	books domain.BookRepository
}

func NewBookService(books domain.BookRepository) *BookService {
	return &BookService{books: books}
}

func (s *BookService) Create(ctx context.Context, owner *domain.User, in BookInput) (*domain.Book, error) {
	if owner == nil || owner.ID == 0 {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title", "must not be empty")
	}
	if strings.TrimSpace(in.Author) == "" {
		return nil, invalid("author", "must not be empty")
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, invalid("price", "must not be negative")
	}
	if in.ISBN != nil && strings.TrimSpace(*in.ISBN) == "" {
		in.ISBN = nil
	}
	if in.ISBN != nil {
		dup, err := s.books.FindByISBN(ctx, *in.ISBN)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrDuplicateISBN
		}
	}
	b := &domain.Book{
		Title:       in.Title,
		Author:      in.Author,
		Description: in.Description,
		ISBN:        in.ISBN,
		Price:       in.Price,
		OwnerID:     owner.ID,
	}
	if err := s.books.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookService) Get(ctx context.Context, id uint) (*domain.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

// List total 在分页前统计；空结果集约定报告 pages=1
func (s *BookService) List(ctx context.Context, f domain.BookFilter, page, size int) (*PageResult, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	offset := (page - 1) * size
	items, total, err := s.books.List(ctx, f, offset, size)
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if total == 0 {
		pages = 1
	}
	if items == nil {
		items = []domain.Book{}
	}
	return &PageResult{Items: items, Total: total, Page: page, Size: size, Pages: pages}, nil
}

func (s *BookService) MyBooks(ctx context.Context, owner *domain.User) ([]domain.Book, error) {
	if owner == nil || owner.ID == 0 {
		return nil, ErrUnauthenticated
	}
	return s.books.ListByOwner(ctx, owner.ID)
}

// Update 先查存在（404），再判归属（403），最后逐字段合并
func (s *BookService) Update(ctx context.Context, identity *domain.User, id uint, patch BookPatch) (*domain.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if err := AuthorizeMutation(identity, b); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, invalid("title", "must not be empty")
		}
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		if strings.TrimSpace(*patch.Author) == "" {
			return nil, invalid("author", "must not be empty")
		}
		b.Author = *patch.Author
	}
	if patch.Description != nil {
		b.Description = patch.Description
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, invalid("price", "must not be negative")
		}
		b.Price = patch.Price
	}
	if patch.ISBN != nil {
		switch {
		case strings.TrimSpace(*patch.ISBN) == "":
			// 空串清除 ISBN
			b.ISBN = nil
		case b.ISBN == nil || *patch.ISBN != *b.ISBN:
			dup, err := s.books.FindByISBN(ctx, *patch.ISBN)
			if err != nil {
				return nil, err
			}
			if dup != nil {
				return nil, ErrDuplicateISBN
			}
			b.ISBN = patch.ISBN
		}
	}

	if err := s.books.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookService) Delete(ctx context.Context, identity *domain.User, id uint) error {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrNotFound
	}
	if err := AuthorizeMutation(identity, b); err != nil {
		return err
	}
	return s.books.Delete(ctx, id)
}

// SetCover 文件挂载也是归属受限的变更
func (s *BookService) SetCover(ctx context.Context, identity *domain.User, id uint, path string) (*domain.Book, error) {
	return s.attach(ctx, identity, id, func(b *domain.Book) { b.CoverImage = &path })
}

func (s *BookService) SetFile(ctx context.Context, identity *domain.User, id uint, path string) (*domain.Book, error) {
	return s.attach(ctx, identity, id, func(b *domain.Book) { b.FilePath = &path })
}

func (s *BookService) attach(ctx context.Context, identity *domain.User, id uint, apply func(*domain.Book)) (*domain.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if err := AuthorizeMutation(identity, b); err != nil {
		return nil, err
	}
	apply(b)
	if err := s.books.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
