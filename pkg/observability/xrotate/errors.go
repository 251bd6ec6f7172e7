package xrotate

import "errors"

// 配置校验错误，由 NewDaily 返回
var (
	// ErrEmptyFilename 文件名为空
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidBaseName 文件名去掉扩展名后为空（如 ".log"）
	ErrInvalidBaseName = errors.New("xrotate: invalid base name")

	// ErrInvalidMaxFiles MaxFiles 值无效（必须在 1~3650 范围内）
	ErrInvalidMaxFiles = errors.New("xrotate: invalid MaxFiles")

	// ErrInvalidFileMode FileMode 包含非权限位（仅允许低 9 位 0000~0777）
	ErrInvalidFileMode = errors.New("xrotate: invalid FileMode")

	// ErrClosed 轮转器已关闭
	ErrClosed = errors.New("xrotate: rotator is closed")
)

// 轮转维护告警，只通过 OnError/Observer 上报，不会从 Write 返回
var (
	// ErrAliasRefresh 别名符号链接创建或替换失败
	ErrAliasRefresh = errors.New("xrotate: alias refresh failed")

	// ErrAliasConflict 别名路径已被非符号链接文件占用，轮转器不会覆盖它
	ErrAliasConflict = errors.New("xrotate: alias path is not a symlink")

	// ErrSweepList 清理时无法列举目录，本次清理未删除任何文件
	ErrSweepList = errors.New("xrotate: sweep list failed")

	// ErrSweepRemove 删除单个过期文件失败，其余文件继续清理
	ErrSweepRemove = errors.New("xrotate: sweep remove failed")
)
