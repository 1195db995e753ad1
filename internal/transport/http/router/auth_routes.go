package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-bookstore/internal/service"
	mdw "go-gin-bookstore/internal/transport/http/middleware"
)

func mountAuthRoutes(api, authed *gin.RouterGroup, d Deps) {
	ezPublic := New(api)

	type registerIn struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"required,min=3,max=50"`
		Password string `json:"password" binding:"required,min=8"`
	}
	RegisterAction[registerIn, *service.UserSummary](ezPublic, Action[registerIn, *service.UserSummary]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (*service.UserSummary, error) {
			return d.Auth.Register(c.Request.Context(), in.Email, in.Username, in.Password)
		},
	})

	type loginIn struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		AccessToken string               `json:"access_token"`
		TokenType   string               `json:"token_type"`
		User        *service.UserSummary `json:"user"`
	}
	RegisterAction[loginIn, loginOut](ezPublic, Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			tok, sum, err := d.Auth.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{AccessToken: tok, TokenType: "bearer", User: sum}, nil
		},
	})

	type forgotIn struct {
		Email string `json:"email" binding:"required,email"`
	}
	RegisterAction[forgotIn, gin.H](ezPublic, Action[forgotIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/forgot-password",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *forgotIn) (gin.H, error) {
			if err := d.Auth.ForgotPassword(c.Request.Context(), in.Email); err != nil {
				return nil, err
			}
			// 不透露邮箱是否存在
			return gin.H{"message": "if the email exists, a password reset link has been sent"}, nil
		},
	})

	type resetIn struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	RegisterAction[resetIn, gin.H](ezPublic, Action[resetIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *resetIn) (gin.H, error) {
			if err := d.Auth.ResetPassword(c.Request.Context(), in.Token, in.NewPassword); err != nil {
				return nil, err
			}
			return gin.H{"message": "password reset successfully"}, nil
		},
	})

	ezAuth := New(authed)
	RegisterAction[struct{}, *service.UserSummary](ezAuth, Action[struct{}, *service.UserSummary]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.UserSummary, error) {
			u := mdw.Identity(c)
			if u == nil {
				return nil, service.ErrUnauthenticated
			}
			return &service.UserSummary{
				ID: u.ID, Email: u.Email, Username: u.Username,
				Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
			}, nil
		},
	})
}
