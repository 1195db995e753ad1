package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-bookstore/internal/service"
	resp "go-gin-bookstore/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none"
)

// AErr 传输层自定义错误（code 即 HTTP 状态）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func BadRequest(msg string) error   { return &AErr{Code: 400, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: 401, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: 403, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: 404, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: 500, Msg: msg, Err: err}
}

// WriteError 统一出口：领域错误 → code/状态码。
// 未识别的错误按存储故障处理：细节进日志，不回给调用方。
func WriteError(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		c.JSON(resp.HTTPStatus(ae.Code), resp.Error(ae.Code, ae.Error()))
		return
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, ve.Error()))
		return
	}
	switch {
	case errors.Is(err, service.ErrDuplicateEmail), errors.Is(err, service.ErrDuplicateISBN):
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
	}
}

// Action 非 CRUD 一行注册：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}
