package router

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"go-gin-bookstore/internal/domain"
	mdw "go-gin-bookstore/internal/transport/http/middleware"
	resp "go-gin-bookstore/internal/transport/http/response"
)

func mountUploadRoutes(authed *gin.RouterGroup, d Deps) {
	maxBytes := int64(d.MaxUploadMB) << 20

	// CSV 批量导入，逐行成败见返回报告
	authed.POST("/upload/books", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			WriteError(c, BadRequest("missing file field"))
			return
		}
		if fh.Size > maxBytes {
			WriteError(c, BadRequest(fmt.Sprintf("file exceeds %dMB limit", d.MaxUploadMB)))
			return
		}
		f, err := fh.Open()
		if err != nil {
			WriteError(c, Internal("open upload failed", err))
			return
		}
		defer f.Close()

		report, err := d.Books.ImportCSV(c.Request.Context(), mdw.Identity(c), f)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(report))
	})
}

type attachFn func(ctx context.Context, identity *domain.User, id uint, path string) (*domain.Book, error)

func attachHandler(d Deps, field, subdir string, set attachFn) gin.HandlerFunc {
	return attachUpload(d.UploadDir, d.MaxUploadMB, field, subdir, set, func(ctx context.Context, id uint) {
		if d.Cache != nil {
			d.Cache.Invalidate(ctx, bookKey(id))
		}
	})
}

// attachUpload 接收单个 multipart 文件。先落盘，再走归属受限的 DB 更新：
// DB 侧失败时清掉刚写的文件，避免记录指向从未存储的路径；
// 成功后使详情缓存失效
func attachUpload(dir string, maxMB int, field, subdir string, set attachFn, invalidate func(context.Context, uint)) gin.HandlerFunc {
	maxBytes := int64(maxMB) << 20
	return func(c *gin.Context) {
		id, err := pathID(c, "book")
		if err != nil {
			WriteError(c, err)
			return
		}
		fh, err := c.FormFile(field)
		if err != nil {
			WriteError(c, BadRequest("missing "+field+" field"))
			return
		}
		if fh.Size > maxBytes {
			WriteError(c, BadRequest(fmt.Sprintf("file exceeds %dMB limit", maxMB)))
			return
		}

		dst := filepath.Join(dir, subdir, fmt.Sprintf("%d_%s", id, filepath.Base(fh.Filename)))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			WriteError(c, Internal("store upload failed", err))
			return
		}
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			WriteError(c, Internal("store upload failed", err))
			return
		}

		b, err := set(c.Request.Context(), mdw.Identity(c), id, dst)
		if err != nil {
			_ = os.Remove(dst)
			WriteError(c, err)
			return
		}
		invalidate(c.Request.Context(), id)
		c.JSON(http.StatusOK, resp.OK(b))
	}
}
