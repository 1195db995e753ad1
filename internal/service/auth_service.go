package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-gin-bookstore/internal/core/auth"
	"go-gin-bookstore/internal/domain"
	"go-gin-bookstore/pkg/utils"
)

const resetTokenTTL = time.Hour

type UserSummary struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func summarize(u *domain.User) *UserSummary {
	return &UserSummary{
		ID: u.ID, Email: u.Email, Username: u.Username,
		Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
	}
}

type AuthService struct {
	users domain.UserRepository
	jwter *auth.JWTer
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwter: jwter}
}

func (s *AuthService) Register(ctx context.Context, email, username, password string) (*UserSummary, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if !strings.Contains(email, "@") {
		return nil, invalid("email", "must be a valid email address")
	}
	if n := len(username); n < 3 || n > 50 {
		return nil, invalid("username", "must be 3-50 characters")
	}
	if len(password) < 8 {
		return nil, invalid("password", "must be at least 8 characters")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         "user",
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return summarize(u), nil
}

// Login 未知邮箱与密码错误统一返回 ErrInvalidCredentials，不给枚举用户的机会
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *UserSummary, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", nil, err
	}
	if u == nil || !u.Authenticatable() || !utils.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := s.jwter.Issue(u.Email)
	if err != nil {
		return "", nil, err
	}
	return tok, summarize(u), nil
}

// Resolve 把 bearer 令牌解析为当前用户。任何失败（签名、过期、用户不存在、
// 已软删或停用）都折叠成 ErrUnauthenticated，不泄露具体原因。只读，无副作用。
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.jwter.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Authenticatable() {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// ForgotPassword 无论邮箱是否存在都返回成功，避免探测账号
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if u == nil || !u.Authenticatable() {
		return nil
	}
	tok := uuid.NewString()
	exp := time.Now().Add(resetTokenTTL)
	u.ResetToken = &tok
	u.ResetTokenExpires = &exp
	return s.users.Update(ctx, u)
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return invalid("new_password", "must be at least 8 characters")
	}
	u, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if u == nil || !u.Authenticatable() ||
		u.ResetTokenExpires == nil || time.Now().After(*u.ResetTokenExpires) {
		return invalid("token", "invalid or expired reset token")
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	return s.users.Update(ctx, u)
}
