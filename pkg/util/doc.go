// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 路径清洗、目录创建和可写性校验
package util
