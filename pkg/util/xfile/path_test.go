package xfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "绝对路径", input: "/var/log/app.log", want: "/var/log/app.log"},
		{name: "冗余分隔符", input: "/var//log/./app.log", want: "/var/log/app.log"},
		{name: "绝对路径中的 .. 被消解", input: "/var/log/../app.log", want: "/var/app.log"},
		{name: "双点开头的合法文件名", input: "logs/..app.log", want: "logs/..app.log"},
		{name: "空路径", input: "", wantErr: ErrEmptyPath},
		{name: "空字节", input: "/var/log/a\x00.log", wantErr: ErrNullByte},
		{name: "目录路径", input: "/var/log/", wantErr: ErrInvalidPath},
		{name: "反斜杠结尾", input: "logs\\", wantErr: ErrInvalidPath},
		{name: "相对路径穿越", input: "../../etc/passwd", wantErr: ErrPathTraversal},
		{name: "当前目录", input: ".", wantErr: ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestSafeJoin(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		base    string
		input   string
		want    string
		wantErr error
	}{
		{name: "普通文件名", base: base, input: "app.2024-01-01.log", want: filepath.Join(base, "app.2024-01-01.log")},
		{name: "双点开头", base: base, input: "..config", want: filepath.Join(base, "..config")},
		{name: "子目录", base: base, input: "sub/app.log", want: filepath.Join(base, "sub", "app.log")},
		{name: "穿越", base: base, input: "../etc/passwd", wantErr: ErrPathTraversal},
		{name: "内部穿越", base: base, input: "sub/../../x", wantErr: ErrPathTraversal},
		{name: "绝对路径", base: base, input: "/etc/passwd", wantErr: ErrInvalidPath},
		{name: "反斜杠根路径", base: base, input: "\\Windows", wantErr: ErrInvalidPath},
		{name: "当前目录", base: base, input: ".", wantErr: ErrInvalidPath},
		{name: "空名称", base: base, input: "", wantErr: ErrEmptyPath},
		{name: "空 base", base: "", input: "a.log", wantErr: ErrEmptyPath},
		{name: "相对 base", base: "logs", input: "a.log", wantErr: ErrInvalidPath},
		{name: "空字节", base: base, input: "a\x00.log", wantErr: ErrNullByte},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoin(tt.base, tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasDotDotSegment(t *testing.T) {
	assert.True(t, hasDotDotSegment(".."))
	assert.True(t, hasDotDotSegment("a/../b"))
	assert.True(t, hasDotDotSegment("a\\..\\b"))
	assert.False(t, hasDotDotSegment("app..2024.log"))
	assert.False(t, hasDotDotSegment("...hidden"))
	assert.False(t, hasDotDotSegment(""))
}
