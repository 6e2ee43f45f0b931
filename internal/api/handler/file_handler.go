package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
)

// FileHandler 上传文件下载
type FileHandler struct {
	fileSvc service.FileService
}

// NewFileHandler 创建 FileHandler
func NewFileHandler(fileSvc service.FileService) *FileHandler {
	return &FileHandler{fileSvc: fileSvc}
}

// Serve 按存储引用返回文件内容，支持 Range 与条件请求
// GET /api/v1/files/:ref
func (h *FileHandler) Serve(c *gin.Context) {
	content, err := h.fileSvc.Open(c.Request.Context(), CurrentIdentity(c), c.Param("ref"))
	if err != nil {
		handleCommonError(c, err)
		return
	}
	defer content.File.Close()

	c.Header("Content-Disposition", "inline")
	serveFile(c, content)
}

// serveFile 写出文件内容
// 存储文件写入后不再修改，ETag 由修改时间与大小生成
func serveFile(c *gin.Context, content *service.FileContent) {
	c.Header("Content-Type", content.ContentType)
	c.Header("Cache-Control", "private, max-age=3600")
	c.Header("ETag", fmt.Sprintf("\"%x-%x\"", content.ModTime.UnixNano(), content.Size))
	http.ServeContent(c.Writer, c.Request, content.Name, content.ModTime, content.File)
}
