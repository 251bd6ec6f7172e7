package xlog

import "errors"

var (
	// ErrInvalidLevel 无法识别的日志级别字符串
	ErrInvalidLevel = errors.New("xlog: unknown level")

	// ErrInvalidFormat 无法识别的输出格式
	ErrInvalidFormat = errors.New("xlog: unknown format")

	// ErrNilOutput 输出目标为 nil
	ErrNilOutput = errors.New("xlog: nil output writer")
)
