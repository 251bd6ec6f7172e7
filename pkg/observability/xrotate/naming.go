package xrotate

import (
	"strings"
	"time"
)

// dateLayout 文件名中的日期格式（YYYY-MM-DD）
const dateLayout = "2006-01-02"

// DailyName 返回 t 所在自然日的活动文件名：{base}.{YYYY-MM-DD}.{ext}
//
// 日期按 t 自身的时区取值，时分秒被忽略，同一天内任意时刻得到相同的名称。
// ext 为空时返回 {base}.{YYYY-MM-DD}。
func DailyName(base, ext string, t time.Time) string {
	name := base + "." + t.Format(dateLayout)
	if ext != "" {
		name += "." + ext
	}
	return name
}

// AliasName 返回别名符号链接的文件名：{base}.{ext}，ext 为空时为 {base}
func AliasName(base, ext string) string {
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// RetentionSet 返回以 now 为今天、向前 maxFiles 个自然日（含今天）的文件名集合
//
// 使用日历运算而非 24h 相减，夏令时切换日不会跳过或重复某一天。
// 每次清理都重新计算，不跨清理缓存。
func RetentionSet(base, ext string, maxFiles int, now time.Time) map[string]struct{} {
	set := make(map[string]struct{}, max(maxFiles, 0))
	y, m, d := now.Date()
	for k := range maxFiles {
		// 取正午，远离任何时区的午夜跳变
		day := time.Date(y, m, d-k, 12, 0, 0, 0, now.Location())
		set[DailyName(base, ext, day)] = struct{}{}
	}
	return set
}

// candidateMatcher 结构化匹配历史文件名：{base}.<YYYY-MM-DD>.{ext}
//
// 整个名称逐段比对，共享前缀的其他文件（如 app.log.bak、app-worker.2024-01-01.log）
// 不是候选。日期段只校验形状（4-2-2 位数字），不校验日历合法性。
// 按字节比较，base 可以包含任意字节（包括非 UTF-8 序列）。
type candidateMatcher struct {
	prefix string
	suffix string
}

func newCandidateMatcher(base, ext string) candidateMatcher {
	m := candidateMatcher{prefix: base + "."}
	if ext != "" {
		m.suffix = "." + ext
	}
	return m
}

func (m candidateMatcher) match(name string) bool {
	rest, ok := strings.CutPrefix(name, m.prefix)
	if !ok || len(rest) != len(dateLayout)+len(m.suffix) {
		return false
	}
	return isDateToken(rest[:len(dateLayout)]) && rest[len(dateLayout):] == m.suffix
}

// isDateToken 判断 s 是否形如 NNNN-NN-NN
func isDateToken(s string) bool {
	for i := 0; i < len(s); i++ {
		switch i {
		case 4, 7:
			if s[i] != '-' {
				return false
			}
		default:
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
	}
	return len(s) == len(dateLayout)
}
