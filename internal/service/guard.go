package service

import "go-gin-bookstore/internal/domain"

// AuthorizeMutation 纯判定：仅当调用者就是 owner 时放行。
// 调用方必须先确认资源存在（不存在走 ErrNotFound），再做归属判定。
func AuthorizeMutation(identity *domain.User, b *domain.Book) error {
	if identity == nil || identity.ID == 0 {
		return ErrUnauthenticated
	}
	if b.OwnerID != identity.ID {
		return ErrForbidden
	}
	return nil
}
