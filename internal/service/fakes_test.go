package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"go-gin-bookstore/internal/domain"
)

// 内存版仓储，行为对齐 gorm 实现：找不到返回 (nil, nil)

type fakeUserRepo struct {
	seq   uint
	users map[uint]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.seq++
	u.ID = r.seq
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && !u.DeletedAt.Valid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token && !u.DeletedAt.Valid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(_ context.Context, q string, withDeleted bool, offset, limit int) ([]domain.User, int64, error) {
	var all []domain.User
	for _, u := range r.users {
		if !withDeleted && u.DeletedAt.Valid {
			continue
		}
		if q != "" && !strings.Contains(u.Email, q) && !strings.Contains(u.Username, q) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uint) error {
	if u, ok := r.users[id]; ok {
		u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return nil
}

type fakeBookRepo struct {
	seq   uint
	books map[uint]*domain.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: map[uint]*domain.Book{}}
}

func (r *fakeBookRepo) Create(_ context.Context, b *domain.Book) error {
	r.seq++
	b.ID = r.seq
	b.CreatedAt = time.Now()
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeBookRepo) FindByID(_ context.Context, id uint) (*domain.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) FindByISBN(_ context.Context, isbn string) (*domain.Book, error) {
	for _, b := range r.books {
		if b.ISBN != nil && *b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBookRepo) List(_ context.Context, f domain.BookFilter, offset, limit int) ([]domain.Book, int64, error) {
	var all []domain.Book
	for _, b := range r.books {
		if f.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Title)) {
			continue
		}
		if f.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(f.Author)) {
			continue
		}
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeBookRepo) ListByOwner(_ context.Context, ownerID uint) ([]domain.Book, error) {
	var out []domain.Book
	for _, b := range r.books {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookRepo) Update(_ context.Context, b *domain.Book) error {
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeBookRepo) Delete(_ context.Context, id uint) error {
	delete(r.books, id)
	return nil
}
