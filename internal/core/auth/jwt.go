package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid 对外只暴露一种失败：签名错 / 结构错 / 过期都归为它
var ErrTokenInvalid = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
}

// JWTer 进程级单例，启动时构造一次，之后只读
type JWTer struct {
	secret []byte
	issuer string
	method *jwt.SigningMethodHMAC
	TTL    time.Duration
}

func New(secret, issuer, algorithm string, ttl time.Duration) (*JWTer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt: empty secret")
	}
	var m *jwt.SigningMethodHMAC
	switch strings.ToUpper(algorithm) {
	case "HS256":
		m = jwt.SigningMethodHS256
	case "HS384":
		m = jwt.SigningMethodHS384
	case "HS512":
		m = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("jwt: unsupported algorithm %q", algorithm)
	}
	return &JWTer{secret: []byte(secret), issuer: issuer, method: m, TTL: ttl}, nil
}

// Issue 以邮箱为 subject 签发访问令牌
func (j *JWTer) Issue(subject string) (string, error) {
	return j.IssueWithTTL(subject, j.TTL)
}

func (j *JWTer) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(j.method, claims).SignedString(j.secret)
}

// Parse 校验并返回 subject；过期判定不留宽限
func (j *JWTer) Parse(tokenStr string) (string, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != j.method {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", ErrTokenInvalid
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Subject == "" {
		return "", ErrTokenInvalid
	}
	return c.Subject, nil
}
