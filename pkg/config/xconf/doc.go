// Package xconf 提供配置文件加载、反序列化和热重载，基于 koanf 实现。
//
// # 支持的格式
//
//   - YAML：.yaml, .yml
//   - JSON：.json
//
// # 并发安全
//
// Reload 通过互斥锁串行化，解析成功后用 atomic.Pointer 替换 koanf 实例；
// 解析失败时保留旧配置。Client 和 Unmarshal 读取当前实例，不加锁。
//
// Client 返回的指针在 Reload 后仍然有效，但指向旧配置（快照语义），
// 需要最新值时重新调用 Client。
//
// # Unmarshal
//
// Unmarshal 使用 mapstructure 进行反序列化，默认允许弱类型转换
// （例如字符串 "7" 可自动转为 int 7）。字段校验由调用方负责。
//
// # 配置监视
//
// [Watch] 基于 fsnotify 监视配置文件所在目录，内置防抖，兼容编辑器的
// 先写临时文件再 rename 的保存方式。[Watcher.Run] 阻塞直到 ctx 取消，
// 返回后不再有回调执行。从字节数据创建的 Config 不支持监视。
package xconf
