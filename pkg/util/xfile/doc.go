// Package xfile 提供日志目录相关的文件系统工具。
//
// # 路径函数
//
//   - [SanitizePath]: 格式净化（空路径、空字节、".." 段、目录路径），不限制目标目录
//   - [SafeJoin]: 把单个名称拼接到 base 目录下，并确认结果仍在 base 内
//
// ".." 只有作为独立路径段时才被视为穿越，"app..2024.log"、"..config" 等文件名合法。
//
// # 目录函数
//
//   - [EnsureDir] / [EnsureDirWithPerm]: 创建文件的父目录
//   - [CheckWritableDir]: 确认目录存在且当前进程可以在其中创建文件
//
// 所有错误都包装了本包的哨兵错误，可用 [errors.Is] 判断：
//
//	if err := xfile.CheckWritableDir("/var/log/app"); errors.Is(err, xfile.ErrNotWritable) {
//	    // 目录只读
//	}
package xfile
