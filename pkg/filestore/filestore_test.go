package filestore

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	apperrors "github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/errors"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(afero.NewMemMapFs(), "/uploads", 1024)
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := newMemStore(t)
	content := []byte("conteúdo do relatório")

	ref, err := s.Store(bytes.NewReader(content), "relatorio.txt")
	if err != nil {
		t.Fatalf("Store 失败: %v", err)
	}

	f, info, err := s.Open(ref)
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}
	defer f.Close()

	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("读回内容不一致: %q", got)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("文件大小期望 %d，实际 %d", len(content), info.Size())
	}
}

func TestStore_RoundTripSanitizedNames(t *testing.T) {
	s := newMemStore(t)

	for _, tt := range sanitizeCases {
		if tt.want == "" {
			continue
		}
		t.Run(tt.in, func(t *testing.T) {
			content := []byte("dados de " + tt.in)
			ref, err := s.Store(bytes.NewReader(content), tt.in)
			if err != nil {
				t.Fatalf("Store 失败: %v", err)
			}
			if !strings.HasSuffix(ref, "_"+tt.want) {
				t.Errorf("存储引用 %q 应以 _%s 结尾", ref, tt.want)
			}

			f, _, err := s.Open(ref)
			if err != nil {
				t.Fatalf("Open(%q) 失败: %v", ref, err)
			}
			defer f.Close()

			got, err := io.ReadAll(f)
			if err != nil {
				t.Fatalf("读取失败: %v", err)
			}
			if !bytes.Equal(got, content) {
				t.Errorf("读回内容不一致: %q", got)
			}
			if !s.Exists(ref) {
				t.Errorf("Exists(%q) 应为 true", ref)
			}
		})
	}
}

func TestStore_NonASCIINameKeepsExtension(t *testing.T) {
	s := newMemStore(t)

	ref, err := s.Store(strings.NewReader("not really png"), "文件.png")
	if err != nil {
		t.Fatalf("Store 失败: %v", err)
	}
	if OriginalName(ref) != "file.png" {
		t.Errorf("OriginalName 期望 file.png，实际=%s", OriginalName(ref))
	}
	if ct := ContentType(ref, nil); ct != "image/png" {
		t.Errorf("应按扩展名识别为 image/png，实际=%s", ct)
	}
}

func TestStore_ReferencePattern(t *testing.T) {
	s := newMemStore(t)

	ref, err := s.Store(strings.NewReader("png"), "My Photo.PNG")
	if err != nil {
		t.Fatalf("Store 失败: %v", err)
	}

	pattern := regexp.MustCompile(`^\d{20}_My_Photo\.PNG$`)
	if !pattern.MatchString(ref) {
		t.Errorf("存储引用 %q 不符合 {令牌}_My_Photo.PNG 格式", ref)
	}
	if !s.Exists(ref) {
		t.Error("写入后应立即可读")
	}
	if OriginalName(ref) != "My_Photo.PNG" {
		t.Errorf("OriginalName 期望 My_Photo.PNG，实际=%s", OriginalName(ref))
	}
}

func TestStore_TokenFormat(t *testing.T) {
	s := newMemStore(t)
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 535897000, time.UTC)
	s.now = func() time.Time { return fixed }

	first, _ := s.Store(strings.NewReader("a"), "a.txt")
	second, _ := s.Store(strings.NewReader("b"), "a.txt")

	if first != "20260314150926535897_a.txt" {
		t.Errorf("令牌格式不正确: %s", first)
	}
	// 时钟未前进时令牌仍严格递增
	if second != "20260314150926535898_a.txt" {
		t.Errorf("第二个令牌应递增 1 微秒: %s", second)
	}
}

func TestStore_ConcurrentSameNameNoCollision(t *testing.T) {
	s := newMemStore(t)

	const n = 50
	var wg sync.WaitGroup
	refs := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			refs[i], errs[i] = s.Store(strings.NewReader("x"), "same.txt")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("并发写入失败: %v", errs[i])
		}
		if seen[refs[i]] {
			t.Fatalf("存储引用重复: %s", refs[i])
		}
		seen[refs[i]] = true
	}
}

func TestStore_EmptyNameMeansNoFile(t *testing.T) {
	s := newMemStore(t)

	for _, name := range []string{"", "../..", "???"} {
		ref, err := s.Store(strings.NewReader("data"), name)
		if err != nil {
			t.Errorf("名称 %q: 不应返回错误: %v", name, err)
		}
		if ref != "" {
			t.Errorf("名称 %q: 期望空引用，实际=%q", name, ref)
		}
	}

	refs, _ := s.List()
	if len(refs) != 0 {
		t.Errorf("不应写入任何文件，实际=%v", refs)
	}
}

func TestStore_PayloadTooLarge(t *testing.T) {
	s := newMemStore(t)

	_, err := s.Store(bytes.NewReader(make([]byte, 1025)), "big.bin")
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("期望 ErrPayloadTooLarge，实际: %v", err)
	}
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Error("ErrPayloadTooLarge 应属于校验错误")
	}

	refs, _ := s.List()
	if len(refs) != 0 {
		t.Errorf("超限时不应创建文件，实际=%v", refs)
	}

	// 恰好等于上限允许写入
	if _, err := s.Store(bytes.NewReader(make([]byte, 1024)), "edge.bin"); err != nil {
		t.Errorf("等于上限时应写入成功: %v", err)
	}
}

func TestStore_TraversalNameStaysInRoot(t *testing.T) {
	s := newMemStore(t)

	ref, err := s.Store(strings.NewReader("root:x"), "../../etc/passwd")
	if err != nil {
		t.Fatalf("Store 失败: %v", err)
	}
	if strings.ContainsAny(ref, `/\`) {
		t.Errorf("存储引用含路径分隔符: %q", ref)
	}
	if filepath.Dir(filepath.Join(s.Root(), ref)) != s.Root() {
		t.Errorf("存储引用解析到上传目录之外: %q", ref)
	}
}

func TestOpen_RejectsTraversal(t *testing.T) {
	s := newMemStore(t)

	for _, ref := range []string{
		"../secret.txt",
		"..",
		"/etc/passwd",
		"sub/file.txt",
		`..\file.txt`,
		"a..b",
		"",
	} {
		if _, _, err := s.Open(ref); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("Open(%q) 期望 ErrPathTraversal，实际: %v", ref, err)
		}
	}
}

func TestOpen_NotFound(t *testing.T) {
	s := newMemStore(t)

	_, _, err := s.Open("20260101000000000000_missing.txt")
	if !errors.Is(err, ErrFileNotFound) || !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("期望 ErrFileNotFound，实际: %v", err)
	}
}

func TestOpen_RejectsSymlink(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o600); err != nil {
		t.Fatalf("写入外部文件失败: %v", err)
	}

	root := t.TempDir()
	s, err := NewOS(root, 0)
	if err != nil {
		t.Fatalf("NewOS 失败: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("当前平台不支持符号链接: %v", err)
	}

	if _, _, err := s.Open("link.txt"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("符号链接应被拒绝，实际: %v", err)
	}
	if s.MaxBytes() != DefaultMaxBytes {
		t.Errorf("maxBytes<=0 时应使用默认上限，实际=%d", s.MaxBytes())
	}
}

func TestStore_StorageIOError(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := base.MkdirAll("/uploads", 0o750); err != nil {
		t.Fatalf("MkdirAll 失败: %v", err)
	}
	s, err := New(afero.NewReadOnlyFs(base), "/uploads", 1024)
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}

	_, err = s.Store(strings.NewReader("x"), "a.txt")
	if !errors.Is(err, apperrors.ErrStorageIO) {
		t.Errorf("只读文件系统上写入应返回 ErrStorageIO，实际: %v", err)
	}
}

func TestList(t *testing.T) {
	s := newMemStore(t)
	fs := s.fs

	a, _ := s.Store(strings.NewReader("a"), "a.txt")
	b, _ := s.Store(strings.NewReader("b"), "b.txt")
	_ = afero.WriteFile(fs, filepath.Join(s.Root(), ".gitkeep"), nil, 0o640)
	_ = fs.MkdirAll(filepath.Join(s.Root(), "subdir"), 0o750)

	refs, err := s.List()
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(refs) != 2 || refs[0] != a || refs[1] != b {
		t.Errorf("List 结果不符: %v", refs)
	}
}

func TestContentType(t *testing.T) {
	if ct := ContentType("x_report.pdf", nil); ct != "application/pdf" {
		t.Errorf("pdf 类型推断错误: %s", ct)
	}
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if ct := ContentType("x_noext", png); ct != "image/png" {
		t.Errorf("内容嗅探错误: %s", ct)
	}
}
