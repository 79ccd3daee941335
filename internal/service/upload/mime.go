package upload

import "strings"

// DefaultAllowedTypes Redactor图片上传允许的MIME类型
var DefaultAllowedTypes = []string{
	"image/png",
	"image/jpg",
	"image/jpeg",
	"image/pjpeg",
	"image/gif",
}

// TypeValidator 基于白名单校验客户端声明的MIME类型
// 只比较字符串，不检查文件内容
type TypeValidator struct {
	allowed map[string]struct{}
}

// NewTypeValidator 创建类型校验器，types为空时使用默认白名单
func NewTypeValidator(types []string) *TypeValidator {
	if len(types) == 0 {
		types = DefaultAllowedTypes
	}
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		t = normalizeType(t)
		if t != "" {
			allowed[t] = struct{}{}
		}
	}
	return &TypeValidator{allowed: allowed}
}

// IsValid 判断声明的类型是否在白名单内，大小写不敏感
func (v *TypeValidator) IsValid(declared string) bool {
	t := normalizeType(declared)
	if t == "" {
		return false
	}
	_, ok := v.allowed[t]
	return ok
}

var defaultValidator = NewTypeValidator(nil)

// IsValidFileType 使用默认白名单校验类型
func IsValidFileType(declared string) bool {
	return defaultValidator.IsValid(declared)
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
