package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeFilename 只保留客户端文件名的最后一段
// 同时处理 / 和 \ 分隔符；空名和以 "." 开头的名称（含 "." 与 ".."）视为无效
func SanitizeFilename(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsRune(name, 0) {
		return "", false
	}
	return name, true
}

// SplitFilename 按最后一个 "." 拆分文件名
// 没有 "." 时整个名称作为basename，扩展名为空
func SplitFilename(name string) (base, ext string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// JoinFilename SplitFilename的逆操作，扩展名为空时不追加 "."
func JoinFilename(base, ext string) string {
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// matchesSimilar 判断entry是否符合 {base}*.{ext} 模式
// 扩展名为空时模式为 {base}*，且entry中不能含有 "."
func matchesSimilar(entry, base, ext string) bool {
	if !strings.HasPrefix(entry, base) {
		return false
	}
	if ext == "" {
		return !strings.Contains(entry[len(base):], ".")
	}
	suffix := "." + ext
	return len(entry) >= len(base)+len(suffix) && strings.HasSuffix(entry, suffix)
}

// CountSimilar 统计目录中符合 {base}*.{ext} 模式的条目数量
// base和ext按字面匹配，不解释通配符
func CountSimilar(dir, base, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if matchesSimilar(e.Name(), base, ext) {
			count++
		}
	}
	return count, nil
}

// suffixedName 生成 {base}-{n}.{ext}
func suffixedName(base, ext string, n int) string {
	return JoinFilename(fmt.Sprintf("%s-%d", base, n), ext)
}

// ResolveFilename 在目标目录中为name计算不冲突的文件名
// 已有n个相似文件时返回 {base}-{n+1}.{ext}，否则返回原名
// 同时返回后续重试时应使用的下一个序号
func ResolveFilename(dir, name string) (resolved string, next int, err error) {
	base, ext := SplitFilename(name)
	count, err := CountSimilar(dir, base, ext)
	if err != nil {
		return "", 0, err
	}
	if count == 0 {
		return name, 2, nil
	}
	return suffixedName(base, ext, count+1), count + 2, nil
}

// storedPath 返回目录内文件的绝对路径
func storedPath(dir, name string) string {
	return filepath.Join(dir, name)
}
