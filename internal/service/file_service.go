package service

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/filestore"
)

// FileStore 上传文件仓库
type FileStore interface {
	Store(content io.Reader, clientName string) (string, error)
	Open(ref string) (afero.File, os.FileInfo, error)
	Exists(ref string) bool
	List() ([]string, error)
}

// Upload 一次可选的文件上传
type Upload struct {
	Filename string
	Content  io.Reader
}

// FileContent 待下发的文件，调用方负责关闭 File
type FileContent struct {
	File        afero.File
	Name        string // 下载时建议的文件名（去掉时间戳前缀）
	ContentType string
	Size        int64
	ModTime     time.Time
}

// FileService 受保护的文件读取
type FileService interface {
	Open(ctx context.Context, identity *Identity, ref string) (*FileContent, error)
}

type fileService struct {
	guard  AccessGuard
	files  FileStore
	logger *zap.Logger
}

// NewFileService 创建 FileService 实例
func NewFileService(guard AccessGuard, files FileStore, logger *zap.Logger) FileService {
	return &fileService{guard: guard, files: files, logger: logger}
}

func (s *fileService) Open(ctx context.Context, identity *Identity, ref string) (*FileContent, error) {
	if d := s.guard.Authorize(ctx, identity, RolesAnyUser...); !d.Allowed {
		return nil, d.Err()
	}
	return openStored(s.files, ref, s.logger)
}

// openStored 打开存储文件并推断类型
func openStored(files FileStore, ref string, logger *zap.Logger) (*FileContent, error) {
	f, info, err := files.Open(ref)
	if err != nil {
		logger.Debug("打开存储文件失败", zap.String("ref", ref), zap.Error(err))
		return nil, err
	}

	return &FileContent{
		File:        f,
		Name:        filestore.OriginalName(ref),
		ContentType: filestore.SniffContentType(ref, f),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}

// countingReader 统计实际读出的字节数
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
