package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/api/middleware"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	apperrors "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/errors"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/filestore"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/response"
)

// CurrentIdentity 从 Gin 上下文中提取会话身份
// 未登录时返回 nil，由访问守卫给出拒绝结果
func CurrentIdentity(c *gin.Context) *service.Identity {
	v, exists := c.Get(middleware.IdentityKey)
	if !exists {
		return nil
	}
	identity, _ := v.(*service.Identity)
	return identity
}

// formUpload 读取 multipart 表单中的可选文件字段
// 字段缺失时返回 nil；调用方负责关闭返回的 multipart.File
func formUpload(c *gin.Context, field string) (*service.Upload, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: 读取上传文件: %w", apperrors.ErrStorageIO, err)
	}
	return &service.Upload{Filename: header.Filename, Content: f}, f, nil
}

// isBodyTooLarge 判断是否因超出 BodyLimit 而读取失败
// multipart 解析可能以 %v 包装底层错误，因此同时比对错误文本
func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	return strings.Contains(err.Error(), "http: request body too large")
}

// attachment 设置下载响应头
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
}

// ── 错误映射 ──

// handleCommonError 处理跨模块共享的错误分类
// 各模块 Handler 先匹配自身的业务错误，未命中时交由这里统一处理
func handleCommonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		response.Unauthorized(c, 10002, "未登录或登录已过期")
	case errors.Is(err, filestore.ErrPathTraversal):
		response.Forbidden(c, 15004, "非法的文件引用")
	case errors.Is(err, apperrors.ErrAccessDenied):
		response.Forbidden(c, 10003, "无权限访问")
	case errors.Is(err, filestore.ErrPayloadTooLarge):
		response.TooLarge(c, 15001, "上传文件超过大小限制")
	case isBodyTooLarge(err):
		response.TooLarge(c, 10005, "请求体过大")
	case errors.Is(err, filestore.ErrFileNotFound):
		response.NotFound(c, 15003, "文件不存在")
	case errors.Is(err, apperrors.ErrValidation):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, 10006, "资源不存在")
	case errors.Is(err, apperrors.ErrStorageIO):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, 15002, "文件存储失败")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// handleBindError 处理请求参数绑定错误
func handleBindError(c *gin.Context, err error) {
	if isBodyTooLarge(err) {
		response.TooLarge(c, 10005, "请求体过大")
		return
	}
	response.BadRequest(c, 10001, "参数校验失败")
}
