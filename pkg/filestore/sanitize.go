package filestore

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxNameLen 清洗后文件名的最大字节数，为时间戳前缀留出空间
const maxNameLen = 200

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	dotRuns     = regexp.MustCompile(`\.{2,}`)
	extOnly     = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)
)

// fallbackStem 主干全部被清洗掉时使用的文件名主干
const fallbackStem = "file"

// Windows 保留设备名，落盘前加前缀
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Sanitize 将客户端提供的文件名转换为可直接落盘的安全名称
//
//	"My Photo.PNG"     -> "My_Photo.PNG"
//	"../../etc/passwd" -> "etc_passwd"
//	"Relatório.pdf"    -> "Relatorio.pdf"
//	"a..b.pdf"         -> "a.b.pdf"
//	"文件.png"          -> "file.png"
//
// 结果不含路径分隔符与连续的点；全部字符都不安全时返回空串。
func Sanitize(name string) string {
	// 兼容分解后丢弃非 ASCII（去掉重音符号，保留基字母）
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	s := b.String()

	s = strings.NewReplacer("/", " ", "\\", " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeChars.ReplaceAllString(s, "")
	s = dotRuns.ReplaceAllString(s, ".")

	// 主干只含非 ASCII 字符时保留扩展名
	if extOnly.MatchString(s) && hasStem(name) {
		s = fallbackStem + s
	}
	s = strings.Trim(s, "._")

	if s == "" {
		return ""
	}

	base := strings.ToUpper(strings.SplitN(s, ".", 2)[0])
	if _, ok := reservedNames[base]; ok {
		s = "_" + s
	}

	if len(s) > maxNameLen {
		ext := filepath.Ext(s)
		if len(ext) > 16 {
			ext = ""
		}
		s = strings.TrimRight(s[:maxNameLen-len(ext)], "._") + ext
	}

	return s
}

// hasStem 判断原始文件名最后一段在扩展名之前是否有内容
func hasStem(name string) bool {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndex(name, ".")
	return i > 0 && strings.TrimSpace(name[:i]) != ""
}
