package upload

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMarker 推导上传根目录时查找的目录名
const DefaultMarker = "wp-content"

// ResolveUploadsRoot 确定上传根目录
// 优先使用显式配置的uploadsRoot；否则在scriptPath中查找名为marker的目录段，
// 截断其后的部分并追加 uploads
func ResolveUploadsRoot(uploadsRoot, scriptPath, marker string) (string, error) {
	if uploadsRoot != "" {
		return filepath.Clean(uploadsRoot), nil
	}
	if scriptPath == "" {
		return "", fmt.Errorf("no uploads root configured")
	}
	if marker == "" {
		marker = DefaultMarker
	}

	slashed := filepath.ToSlash(scriptPath)
	segments := strings.Split(slashed, "/")
	for i, seg := range segments {
		if seg == marker {
			base := strings.Join(segments[:i+1], "/")
			if base == "" {
				base = "/"
			}
			return filepath.FromSlash(path.Join(base, "uploads")), nil
		}
	}
	return "", fmt.Errorf("marker %q not found in %s", marker, scriptPath)
}

// DatePartition 返回时间对应的 YYYY/MM 相对路径（正斜杠分隔）
func DatePartition(now time.Time) string {
	return fmt.Sprintf("%04d/%02d", now.Year(), int(now.Month()))
}

// EnsureDateDirectory 确保 root/YYYY/MM 目录存在
// 目录已存在时不做任何修改，可被并发请求重复调用
// 返回绝对目录路径和相对根目录的分区路径
func EnsureDateDirectory(root string, now time.Time, mode os.FileMode) (string, string, error) {
	if mode == 0 {
		mode = 0755
	}
	// 根目录由部署方准备，这里只创建年月子目录
	info, err := os.Stat(root)
	if err != nil {
		return "", "", fmt.Errorf("stat uploads root: %w", err)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("uploads root %s is not a directory", root)
	}

	rel := DatePartition(now)
	dir := filepath.Join(root, filepath.FromSlash(rel))

	if err := os.MkdirAll(dir, mode); err != nil {
		return "", "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, rel, nil
}
