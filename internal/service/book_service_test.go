package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"go-gin-bookstore/internal/domain"
)

func userA() *domain.User {
	return &domain.User{ID: 1, Email: "a@x.com", Username: "alice", IsActive: true}
}

func userB() *domain.User {
	return &domain.User{ID: 2, Email: "b@x.com", Username: "bob", IsActive: true}
}

func TestAuthorizeMutation(t *testing.T) {
	t.Parallel()
	b := &domain.Book{ID: 10, OwnerID: 1}

	require.NoError(t, AuthorizeMutation(userA(), b))
	require.ErrorIs(t, AuthorizeMutation(userB(), b), ErrForbidden)

	// 同邮箱同用户名但 id 不同也不放行
	impostor := &domain.User{ID: 3, Email: "a@x.com", Username: "alice", IsActive: true}
	require.ErrorIs(t, AuthorizeMutation(impostor, b), ErrForbidden)

	require.ErrorIs(t, AuthorizeMutation(nil, b), ErrUnauthenticated)
	require.ErrorIs(t, AuthorizeMutation(&domain.User{}, b), ErrUnauthenticated)
}

func TestCreate_ISBNUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	isbn := "978-0441013593"
	_, err := svc.Create(ctx, userA(), BookInput{Title: "Dune", Author: "Herbert", ISBN: &isbn})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userB(), BookInput{Title: "Dune 2", Author: "Herbert", ISBN: &isbn})
	require.ErrorIs(t, err, ErrDuplicateISBN)
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	var ve *ValidationError
	_, err := svc.Create(ctx, userA(), BookInput{Title: " ", Author: "x"})
	require.ErrorAs(t, err, &ve)

	neg := -1.0
	_, err = svc.Create(ctx, userA(), BookInput{Title: "t", Author: "a", Price: &neg})
	require.ErrorAs(t, err, &ve)

	_, err = svc.Create(ctx, nil, BookInput{Title: "t", Author: "a"})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestList_Pagination(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, userA(), BookInput{
			Title:  fmt.Sprintf("Book %02d", i),
			Author: "Author",
		})
		require.NoError(t, err)
	}

	p1, err := svc.List(ctx, domain.BookFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, p1.Items, 10)
	require.EqualValues(t, 25, p1.Total)
	require.Equal(t, 3, p1.Pages)

	p3, err := svc.List(ctx, domain.BookFilter{}, 3, 10)
	require.NoError(t, err)
	require.Len(t, p3.Items, 5)

	p4, err := svc.List(ctx, domain.BookFilter{}, 4, 10)
	require.NoError(t, err)
	require.Empty(t, p4.Items)
	require.EqualValues(t, 25, p4.Total)

	// 翻页顺序稳定：id 升序
	require.Less(t, p1.Items[0].ID, p1.Items[9].ID)
	require.Less(t, p1.Items[9].ID, p3.Items[0].ID)
}

func TestList_FilterAndEmptyResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	_, err := svc.Create(ctx, userA(), BookInput{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userA(), BookInput{Title: "Dune Messiah", Author: "Frank Herbert"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userA(), BookInput{Title: "Neuromancer", Author: "William Gibson"})
	require.NoError(t, err)

	// 大小写不敏感子串
	res, err := svc.List(ctx, domain.BookFilter{Title: "dune"}, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Total)

	// title+author 同时给出取交集
	res, err = svc.List(ctx, domain.BookFilter{Title: "dune", Author: "gibson"}, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 0, res.Total)

	res, err = svc.List(ctx, domain.BookFilter{Title: "zzz-no-match"}, 1, 10)
	require.NoError(t, err)
	require.Empty(t, res.Items)
	require.EqualValues(t, 0, res.Total)
	require.Equal(t, 1, res.Pages) // 空结果集约定 pages=1
}

func TestUpdate_OwnershipScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	b, err := svc.Create(ctx, userA(), BookInput{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	newTitle := "Dune (revised)"
	_, err = svc.Update(ctx, userB(), b.ID, BookPatch{Title: &newTitle})
	require.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Update(ctx, userA(), b.ID, BookPatch{Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, newTitle, got.Title)
	require.Equal(t, "Frank Herbert", got.Author) // 未提供的字段不动

	reread, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, newTitle, reread.Title)
}

func TestUpdate_NotFoundBeforeForbidden(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	title := "whatever"
	_, err := svc.Update(ctx, userB(), 9999, BookPatch{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrForbidden)
}

func TestDelete_Ownership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	b, err := svc.Create(ctx, userA(), BookInput{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, userB(), b.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, userA(), b.ID))
	_, err = svc.Get(ctx, b.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, userA(), b.ID), ErrNotFound)
}

func TestSetCover_Ownership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	b, err := svc.Create(ctx, userA(), BookInput{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	_, err = svc.SetCover(ctx, userB(), b.ID, "covers/1.png")
	require.ErrorIs(t, err, ErrForbidden)

	got, err := svc.SetCover(ctx, userA(), b.ID, "covers/1.png")
	require.NoError(t, err)
	require.NotNil(t, got.CoverImage)
	require.Equal(t, "covers/1.png", *got.CoverImage)
}

func TestCreate_BlankISBNStoredAsUnset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	empty := ""
	a, err := svc.Create(ctx, userA(), BookInput{Title: "Dune", Author: "Herbert", ISBN: &empty})
	require.NoError(t, err)
	require.Nil(t, a.ISBN)

	// 两本空 ISBN 不算重复
	b, err := svc.Create(ctx, userB(), BookInput{Title: "Neuromancer", Author: "Gibson", ISBN: &empty})
	require.NoError(t, err)
	require.Nil(t, b.ISBN)
}

func TestUpdate_ISBNChangeAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewBookService(newFakeBookRepo())

	isbn1 := "978-0441013593"
	isbn2 := "978-0441569595"
	b1, err := svc.Create(ctx, userA(), BookInput{Title: "Dune", Author: "Herbert", ISBN: &isbn1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userA(), BookInput{Title: "Neuromancer", Author: "Gibson", ISBN: &isbn2})
	require.NoError(t, err)

	// 改成已占用的 ISBN
	_, err = svc.Update(ctx, userA(), b1.ID, BookPatch{ISBN: &isbn2})
	require.ErrorIs(t, err, ErrDuplicateISBN)

	// 同值重发不触发重复判定
	got, err := svc.Update(ctx, userA(), b1.ID, BookPatch{ISBN: &isbn1})
	require.NoError(t, err)
	require.Equal(t, isbn1, *got.ISBN)

	// 空串清除
	empty := ""
	got, err = svc.Update(ctx, userA(), b1.ID, BookPatch{ISBN: &empty})
	require.NoError(t, err)
	require.Nil(t, got.ISBN)

	// 清除后原 ISBN 可被他人使用
	_, err = svc.Create(ctx, userB(), BookInput{Title: "Dune Copy", Author: "Herbert", ISBN: &isbn1})
	require.NoError(t, err)
}
