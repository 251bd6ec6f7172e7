//go:build !unix

package xfile

import "os"

// accessWritable 在没有 access(2) 的平台上创建并删除一个探测文件。
func accessWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".xfile-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
