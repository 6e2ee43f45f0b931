package filestore

import (
	"strings"
	"testing"
)

// sanitizeCases 同时用于清洗规则与写入后读回的校验
var sanitizeCases = []struct {
	in   string
	want string
}{
	{"My Photo.PNG", "My_Photo.PNG"},
	{"../../etc/passwd", "etc_passwd"},
	{`..\..\windows\system32\cmd.exe`, "windows_system32_cmd.exe"},
	{"Relatório Mensal.pdf", "Relatorio_Mensal.pdf"},
	{"  espaços   múltiplos  .txt", "espacos_multiplos_.txt"},
	{"foto<>|?*.jpg", "foto.jpg"},
	{".hidden", "hidden"},
	{"CON.txt", "_CON.txt"},
	{"", ""},
	{"../..", ""},
	{"文件.png", "file.png"},
	{"???", ""},
	{"relatorio..final.pdf", "relatorio.final.pdf"},
	{"foto...png", "foto.png"},
	{"a. .b", "a._.b"},
	{"x/../y.txt", "x_._y.txt"},
	{"...", ""},
}

func TestSanitize(t *testing.T) {
	for _, tt := range sanitizeCases {
		t.Run(tt.in, func(t *testing.T) {
			got := Sanitize(tt.in)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q，期望 %q", tt.in, got, tt.want)
			}
			if strings.ContainsAny(got, `/\`) {
				t.Errorf("Sanitize(%q) 结果含路径分隔符: %q", tt.in, got)
			}
			if strings.Contains(got, "..") {
				t.Errorf("Sanitize(%q) 结果含连续的点: %q", tt.in, got)
			}
		})
	}
}

func TestSanitize_LongNameKeepsExtension(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 500) + ".pdf")
	if len(got) > maxNameLen {
		t.Errorf("清洗结果长度 %d 超过上限 %d", len(got), maxNameLen)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("长文件名截断后应保留扩展名，实际=%q", got)
	}
}
