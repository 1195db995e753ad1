package router

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-gin-bookstore/internal/domain"
	"go-gin-bookstore/internal/service"
	mdw "go-gin-bookstore/internal/transport/http/middleware"
)

func coverRequest(t *testing.T, url, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func attachEngine(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/books/:id/cover", func(c *gin.Context) {
		c.Set(mdw.KeyIdentity, &domain.User{ID: 1, Email: "a@x.com", IsActive: true})
	}, h)
	return r
}

func TestAttachUpload_SavesThenInvalidates(t *testing.T) {
	dir := t.TempDir()

	var gotPath string
	var invalidated []uint
	set := func(_ context.Context, u *domain.User, id uint, path string) (*domain.Book, error) {
		gotPath = path
		return &domain.Book{ID: id, OwnerID: u.ID, CoverImage: &path}, nil
	}
	r := attachEngine(attachUpload(dir, 10, "cover", "covers", set,
		func(_ context.Context, id uint) { invalidated = append(invalidated, id) }))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, coverRequest(t, "/books/7/cover", "cover", "dune.png", []byte("png-bytes")))

	require.Equal(t, http.StatusOK, w.Code)
	want := filepath.Join(dir, "covers", "7_dune.png")
	require.Equal(t, want, gotPath)
	require.FileExists(t, want)
	// 挂载成功后必须打掉详情缓存
	require.Equal(t, []uint{7}, invalidated)
}

func TestAttachUpload_SetFailureRemovesFile(t *testing.T) {
	dir := t.TempDir()

	set := func(_ context.Context, _ *domain.User, _ uint, _ string) (*domain.Book, error) {
		return nil, service.ErrForbidden
	}
	invalidated := 0
	r := attachEngine(attachUpload(dir, 10, "cover", "covers", set,
		func(context.Context, uint) { invalidated++ }))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, coverRequest(t, "/books/7/cover", "cover", "dune.png", []byte("png-bytes")))

	require.Equal(t, http.StatusForbidden, w.Code)
	// DB 侧被拒时落盘的文件要清掉，缓存也不动
	require.NoFileExists(t, filepath.Join(dir, "covers", "7_dune.png"))
	require.Zero(t, invalidated)
}

func TestAttachUpload_StorageFailureRecordsNothing(t *testing.T) {
	dir := t.TempDir()
	// 占住 covers 路径让 MkdirAll 失败
	require.NoError(t, os.WriteFile(filepath.Join(dir, "covers"), []byte("x"), 0o644))

	setCalled := false
	set := func(_ context.Context, u *domain.User, id uint, path string) (*domain.Book, error) {
		setCalled = true
		return &domain.Book{ID: id, OwnerID: u.ID, CoverImage: &path}, nil
	}
	r := attachEngine(attachUpload(dir, 10, "cover", "covers", set,
		func(context.Context, uint) {}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, coverRequest(t, "/books/7/cover", "cover", "dune.png", []byte("png-bytes")))

	// 存储失败时不能留下指向不存在文件的记录
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.False(t, setCalled)
}

func TestAttachUpload_MissingFileField(t *testing.T) {
	r := attachEngine(attachUpload(t.TempDir(), 10, "cover", "covers",
		func(_ context.Context, _ *domain.User, _ uint, _ string) (*domain.Book, error) {
			t.Fatal("set should not run")
			return nil, nil
		},
		func(context.Context, uint) {}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, coverRequest(t, "/books/7/cover", "wrong-field", "dune.png", []byte("x")))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathID_ResourceInMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, err := pathID(c, "user")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid user id")

	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, err := pathID(c, "book")
	require.NoError(t, err)
	require.EqualValues(t, 12, id)
}
