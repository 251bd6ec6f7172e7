//go:build unix

package xfile

import "golang.org/x/sys/unix"

// accessWritable 按进程的真实 uid/gid 检查目录的写和执行权限，
// 与内核对 owner/group/other 位的判断一致。
func accessWritable(dir string) error {
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}
