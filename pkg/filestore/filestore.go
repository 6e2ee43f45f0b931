// Package filestore 管理上传文件在本地磁盘上的存储。
// 所有文件平铺在一个根目录下，文件名格式为 {时间戳令牌}_{清洗后的原始文件名}。
package filestore

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	apperrors "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/errors"
)

// DefaultMaxBytes 默认上传上限 10 MiB
const DefaultMaxBytes int64 = 10 << 20

// 令牌长度：UTC YYYYMMDDHHMMSS + 6 位微秒
const tokenLen = 20

var (
	ErrPayloadTooLarge = apperrors.Wrap(apperrors.ErrValidation, "文件大小超过上限")
	ErrPathTraversal   = apperrors.Wrap(apperrors.ErrAccessDenied, "存储引用超出上传目录")
	ErrFileNotFound    = apperrors.Wrap(apperrors.ErrNotFound, "文件不存在")
)

// Store 本地文件仓库
type Store struct {
	fs       afero.Fs
	root     string
	maxBytes int64
	now      func() time.Time

	mu   sync.Mutex
	last time.Time // 最近一次发放的令牌时间，保证严格递增
}

// New 基于给定文件系统创建文件仓库，根目录不存在时自动创建
func New(fs afero.Fs, root string, maxBytes int64) (*Store, error) {
	if root == "" {
		return nil, errors.New("上传目录不能为空")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	root = filepath.Clean(root)
	if ok, _ := afero.DirExists(fs, root); !ok {
		if err := fs.MkdirAll(root, 0o750); err != nil {
			return nil, fmt.Errorf("创建上传目录 %s 失败: %w", root, err)
		}
	}
	return &Store{fs: fs, root: root, maxBytes: maxBytes, now: time.Now}, nil
}

// NewOS 基于操作系统文件系统创建文件仓库
func NewOS(root string, maxBytes int64) (*Store, error) {
	return New(afero.NewOsFs(), root, maxBytes)
}

// Root 返回上传目录
func (s *Store) Root() string { return s.root }

// MaxBytes 返回单个文件的大小上限
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// ── 写入 ──

// Store 保存上传内容并返回存储引用
//
// 文件名清洗为空时返回 ("", nil)，表示没有文件，由调用方决定是否算错误。
// 内容超过上限时返回 ErrPayloadTooLarge，不会创建任何文件。
// 写入失败返回 ErrStorageIO，已写出的部分文件不做清理。
func (s *Store) Store(content io.Reader, clientName string) (string, error) {
	name := Sanitize(clientName)
	if name == "" {
		return "", nil
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: 读取上传内容: %w", apperrors.ErrStorageIO, err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrPayloadTooLarge
	}

	ref := s.nextToken() + "_" + name
	full := filepath.Join(s.root, ref)

	f, err := s.fs.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("%w: 创建文件 %s: %w", apperrors.ErrStorageIO, ref, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: 写入文件 %s: %w", apperrors.ErrStorageIO, ref, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: 关闭文件 %s: %w", apperrors.ErrStorageIO, ref, err)
	}

	return ref, nil
}

// nextToken 生成严格递增的微秒级时间戳令牌
func (s *Store) nextToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t

	return t.Format("20060102150405") + fmt.Sprintf("%06d", t.Nanosecond()/int(time.Microsecond))
}

// ── 读取 ──

// resolve 将存储引用映射到上传目录内的路径
// 含分隔符、".."、绝对路径或指向符号链接的引用一律拒绝
func (s *Store) resolve(ref string) (string, error) {
	if ref == "" || ref == "." || ref == ".." ||
		strings.ContainsAny(ref, "/\\\x00") ||
		strings.Contains(ref, "..") ||
		filepath.IsAbs(ref) || filepath.VolumeName(ref) != "" {
		return "", ErrPathTraversal
	}

	full := filepath.Join(s.root, ref)
	if filepath.Dir(full) != s.root {
		return "", ErrPathTraversal
	}

	if lst, ok := s.fs.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(full)
		if err == nil && info.Mode()&os.ModeSymlink != 0 {
			return "", ErrPathTraversal
		}
	}

	return full, nil
}

// Open 打开存储引用对应的文件，调用方负责关闭
func (s *Store) Open(ref string) (afero.File, os.FileInfo, error) {
	full, err := s.resolve(ref)
	if err != nil {
		return nil, nil, err
	}

	info, err := s.fs.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("%w: 读取文件信息 %s: %w", apperrors.ErrStorageIO, ref, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil, ErrFileNotFound
	}

	f, err := s.fs.Open(full)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: 打开文件 %s: %w", apperrors.ErrStorageIO, ref, err)
	}
	return f, info, nil
}

// Exists 判断存储引用对应的文件是否存在
func (s *Store) Exists(ref string) bool {
	full, err := s.resolve(ref)
	if err != nil {
		return false
	}
	info, err := s.fs.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// List 返回上传目录下所有文件的存储引用（跳过子目录与隐藏文件）
func (s *Store) List() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: 列出上传目录: %w", apperrors.ErrStorageIO, err)
	}

	refs := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Mode().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		refs = append(refs, e.Name())
	}
	sort.Strings(refs)
	return refs, nil
}

// ContentType 推断文件的 MIME 类型：优先按扩展名，其次嗅探内容头部
func ContentType(ref string, head []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(ref))); ct != "" {
		return ct
	}
	if len(head) > 512 {
		head = head[:512]
	}
	return http.DetectContentType(head)
}

// SniffContentType 读取文件头部推断类型，并将读取位置复位
func SniffContentType(ref string, f io.ReadSeeker) string {
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	_, _ = f.Seek(0, io.SeekStart)
	return ContentType(ref, head[:n])
}

// OriginalName 去掉存储引用中的时间戳令牌前缀，用于下载时的文件名
func OriginalName(ref string) string {
	if len(ref) > tokenLen+1 && ref[tokenLen] == '_' {
		return ref[tokenLen+1:]
	}
	return ref
}
