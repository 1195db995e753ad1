package router

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-bookstore/internal/core/cache"
	"go-gin-bookstore/internal/domain"
	"go-gin-bookstore/internal/service"
	mdw "go-gin-bookstore/internal/transport/http/middleware"
)

const bookCacheTTL = 5 * time.Minute

func bookKey(id uint) string { return fmt.Sprintf("book:%d", id) }

// pathID 解析 :id，resource 只影响错误提示（book / user）
func pathID(c *gin.Context, resource string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, BadRequest("invalid " + resource + " id")
	}
	return uint(id), nil
}

func mountBookRoutes(api, authed *gin.RouterGroup, d Deps) {
	ezPublic := New(api)
	ezAuth := New(authed)

	// 创建：调用者成为 owner
	RegisterAction[service.BookInput, *domain.Book](ezAuth, Action[service.BookInput, *domain.Book]{
		Method: http.MethodPost,
		Path:   "/books",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.BookInput) (*domain.Book, error) {
			return d.Books.Create(c.Request.Context(), mdw.Identity(c), *in)
		},
	})

	// 列表：公开，不鉴权
	type listQ struct {
		Title  string `form:"title"`
		Author string `form:"author"`
		Page   int    `form:"page,default=1" binding:"omitempty,min=1"`
		Size   int    `form:"size,default=10" binding:"omitempty,min=1,max=100"`
	}
	RegisterAction[listQ, *service.PageResult](ezPublic, Action[listQ, *service.PageResult]{
		Method: http.MethodGet,
		Path:   "/books",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *listQ) (*service.PageResult, error) {
			f := domain.BookFilter{Title: in.Title, Author: in.Author}
			return d.Books.List(c.Request.Context(), f, in.Page, in.Size)
		},
	})

	// 我的书：鉴权，owner 过滤
	RegisterAction[struct{}, []domain.Book](ezAuth, Action[struct{}, []domain.Book]{
		Method: http.MethodGet,
		Path:   "/books/my",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Book, error) {
			return d.Books.MyBooks(c.Request.Context(), mdw.Identity(c))
		},
	})

	// 详情：公开；配置了 redis 则走读缓存
	RegisterAction[struct{}, *domain.Book](ezPublic, Action[struct{}, *domain.Book]{
		Method: http.MethodGet,
		Path:   "/books/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Book, error) {
			id, err := pathID(c, "book")
			if err != nil {
				return nil, err
			}
			ctx := c.Request.Context()
			if d.Cache == nil {
				return d.Books.Get(ctx, id)
			}
			return cache.GetOrLoadJSON[domain.Book](d.Cache, ctx, bookKey(id), bookCacheTTL,
				func(ctx context.Context) (*domain.Book, error) {
					return d.Books.Get(ctx, id)
				})
		},
	})

	RegisterAction[service.BookPatch, *domain.Book](ezAuth, Action[service.BookPatch, *domain.Book]{
		Method: http.MethodPut,
		Path:   "/books/:id",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.BookPatch) (*domain.Book, error) {
			id, err := pathID(c, "book")
			if err != nil {
				return nil, err
			}
			b, err := d.Books.Update(c.Request.Context(), mdw.Identity(c), id, *in)
			if err != nil {
				return nil, err
			}
			if d.Cache != nil {
				d.Cache.Invalidate(c.Request.Context(), bookKey(id))
			}
			return b, nil
		},
	})

	RegisterAction[struct{}, gin.H](ezAuth, Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/books/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := pathID(c, "book")
			if err != nil {
				return nil, err
			}
			if err := d.Books.Delete(c.Request.Context(), mdw.Identity(c), id); err != nil {
				return nil, err
			}
			if d.Cache != nil {
				d.Cache.Invalidate(c.Request.Context(), bookKey(id))
			}
			return gin.H{"id": id}, nil
		},
	})

	// 封面/正文文件：归属受限的变更，保存到上传目录
	authed.POST("/books/:id/cover", attachHandler(d, "cover", "covers", d.Books.SetCover))
	authed.POST("/books/:id/file", attachHandler(d, "file", "files", d.Books.SetFile))
}
