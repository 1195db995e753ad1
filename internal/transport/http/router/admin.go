package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-bookstore/internal/core/server"
	"go-gin-bookstore/internal/domain"
	"go-gin-bookstore/internal/service"
	mdw "go-gin-bookstore/internal/transport/http/middleware"
)

// NewAdminEngine 管理端引擎，统一要求 admin 角色
func NewAdminEngine(l *zap.Logger, users domain.UserRepository, resolver mdw.IdentityResolver) *gin.Engine {
	r := server.NewRouter(l)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthBearer(resolver, "admin"))

	mountAdminActions(admin, users)
	return r
}

func mountAdminActions(admin *gin.RouterGroup, users domain.UserRepository) {
	ez := New(admin)

	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // 按 email/username 模糊搜
		WithDeleted bool   `form:"with_deleted"` // 是否包含软删
	}
	type row struct {
		ID        uint      `json:"id"`
		Email     string    `json:"email"`
		Username  string    `json:"username"`
		Role      string    `json:"role"`
		IsActive  bool      `json:"isActive"`
		CreatedAt time.Time `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}

	RegisterAction[listQ, listOut](ez, Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			us, total, err := users.List(c.Request.Context(), in.Q, in.WithDeleted, in.Offset, in.Limit)
			if err != nil {
				return listOut{}, Internal("list users failed", err)
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.Email, Username: u.Username,
					Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// 封禁 = 软删，之后该账号所有令牌都解析失败
	RegisterAction[struct{}, gin.H](ez, Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := pathID(c, "user")
			if err != nil {
				return nil, err
			}
			u, err := users.FindByID(c.Request.Context(), id)
			if err != nil {
				return nil, Internal("ban user failed", err)
			}
			if u == nil {
				return nil, service.ErrNotFound
			}
			if err := users.SoftDelete(c.Request.Context(), id); err != nil {
				return nil, Internal("ban user failed", err)
			}
			return gin.H{"id": id}, nil
		},
	})
}
