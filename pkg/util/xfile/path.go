package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

func containsNullByte(path string) bool {
	return strings.IndexByte(path, 0) >= 0
}

// hasDotDotSegment 判断路径是否含有恰好为 ".." 的路径段。
// '/' 和 '\' 都按分隔符处理，Linux 上也能拦住 Windows 风格的穿越。
func hasDotDotSegment(path string) bool {
	for seg := range strings.FieldsFuncSeq(path, isSeparator) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// SanitizePath 检查并规范化文件路径。
//
// 拒绝空路径、空字节、以分隔符结尾的目录路径、规范化后仍含 ".." 段的相对路径，
// 以及没有文件名部分的路径。绝对路径中的 ".." 由 filepath.Clean 正常消解。
//
// 本函数只做格式检查，需要把文件限制在某个目录内时使用 [SafeJoin]。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	// Clean 会去掉尾部分隔符，必须先检查
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}

	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}
	return cleaned, nil
}

// SafeJoin 把 name 拼接到 base 目录下。
//
// base 必须是绝对路径；name 必须是相对路径且不含 ".." 段。
// 返回值保证在 base 之内（纯字符串校验，不解析符号链接）：
//
//	SafeJoin("/var/log", "app.2024-01-01.log") // "/var/log/app.2024-01-01.log"
//	SafeJoin("/var/log", "../etc/passwd")      // ErrPathTraversal
//	SafeJoin("/var/log", "/etc/passwd")        // ErrInvalidPath
func SafeJoin(base, name string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("base directory is required: %w", ErrEmptyPath)
	}
	if name == "" {
		return "", fmt.Errorf("path is required: %w", ErrEmptyPath)
	}
	if containsNullByte(base) || containsNullByte(name) {
		return "", fmt.Errorf("path contains null byte: %w", ErrNullByte)
	}

	cleanBase := filepath.Clean(base)
	if !filepath.IsAbs(cleanBase) {
		return "", fmt.Errorf("base must be an absolute path: %w", ErrInvalidPath)
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "\\") || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("path must be relative: %w", ErrInvalidPath)
	}
	cleanName := filepath.Clean(name)
	if cleanName == "." {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}
	if hasDotDotSegment(cleanName) {
		return "", fmt.Errorf("path traversal in path: %w", ErrPathTraversal)
	}

	joined := filepath.Join(cleanBase, cleanName)
	rel, err := filepath.Rel(cleanBase, joined)
	if err != nil || hasDotDotSegment(rel) {
		return "", ErrPathEscaped
	}
	return joined, nil
}
