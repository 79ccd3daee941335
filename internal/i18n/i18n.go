// Package i18n 提供错误消息的国际化支持
package i18n

import (
	"strings"
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/weiwangfds/redactor-upload/internal/logger"
)

// 支持的语言
const (
	LangZhCN = "zh-CN"
	LangEnUS = "en-US"
)

var (
	instance *I18n
	once     sync.Once

	// 语言包存储
	translations = map[string]map[string]string{
		LangZhCN: {
			"success":               "成功",
			"internal_server_error": "服务器内部错误",
			"invalid_params":        "参数错误",
			"too_many_requests":     "请求过于频繁",

			"no_file_provided":          "未选择文件或文件无效",
			"malformed_filename":        "文件名无效",
			"file_type_not_allowed":     "文件类型不允许",
			"file_size_too_large":       "文件大小超限",
			"directory_creation_failed": "上传目录创建失败",
			"file_write_failed":         "文件写入失败",
			"uploads_root_unresolved":   "无法确定上传根目录",
			"mirror_failed":             "对象存储同步失败",

			"unknown_error": "未知错误",
		},
		LangEnUS: {
			"success":               "Success",
			"internal_server_error": "Internal Server Error",
			"invalid_params":        "Invalid Parameters",
			"too_many_requests":     "Too Many Requests",

			"no_file_provided":          "No File Provided",
			"malformed_filename":        "Malformed Filename",
			"file_type_not_allowed":     "Unsupported Media Type",
			"file_size_too_large":       "File Size Too Large",
			"directory_creation_failed": "Directory Creation Failed",
			"file_write_failed":         "File Copy Failed",
			"uploads_root_unresolved":   "Uploads Root Unresolved",
			"mirror_failed":             "Object Storage Mirror Failed",

			"unknown_error": "Unknown Error",
		},
	}
)

// I18n 国际化管理器
type I18n struct {
	mu          sync.RWMutex
	uni         *ut.UniversalTranslator
	translators map[string]ut.Translator
	defaultLang string
}

// GetInstance 获取I18n单例
func GetInstance() *I18n {
	once.Do(func() {
		instance = &I18n{
			translators: make(map[string]ut.Translator),
			defaultLang: LangZhCN,
		}
		instance.initTranslators()
	})
	return instance
}

// initTranslators 初始化翻译器
func (i *I18n) initTranslators() {
	zhCN := zh.New()
	enUS := en_US.New()
	i.uni = ut.New(zhCN, zhCN, enUS)

	langMappings := map[string]string{
		LangZhCN: "zh",
		LangEnUS: "en_US",
	}

	for ourLang, localeLang := range langMappings {
		trans, found := i.uni.GetTranslator(localeLang)
		if !found {
			logger.Errorf("初始化翻译器失败 for language %s (locale: %s): translator not found", ourLang, localeLang)
			continue
		}
		i.translators[ourLang] = trans
	}
}

// Translate 根据键和语言获取翻译
func (i *I18n) Translate(key, lang string) string {
	defaultLang := i.GetDefaultLanguage()

	if _, exists := i.translators[lang]; !exists {
		lang = defaultLang
	}

	if translation, found := translations[lang][key]; found {
		return translation
	}

	if lang != defaultLang {
		if translation, found := translations[defaultLang][key]; found {
			return translation
		}
	}

	logger.Warnf("未找到翻译: %s, 语言: %s", key, lang)
	return key
}

// MatchLanguage 从Accept-Language请求头中选出第一个支持的语言
// 没有匹配时返回默认语言
func (i *I18n) MatchLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		tag = strings.ReplaceAll(tag, "_", "-")
		lower := strings.ToLower(tag)
		switch {
		case lower == "zh" || strings.HasPrefix(lower, "zh-"):
			return LangZhCN
		case lower == "en" || strings.HasPrefix(lower, "en-"):
			return LangEnUS
		}
	}
	return i.GetDefaultLanguage()
}

// SetDefaultLanguage 设置默认语言，不支持的语言将被忽略
func (i *I18n) SetDefaultLanguage(lang string) {
	if !i.IsSupportedLanguage(lang) {
		logger.Warnf("不支持的语言: %s", lang)
		return
	}
	i.mu.Lock()
	i.defaultLang = lang
	i.mu.Unlock()
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.defaultLang
}

// IsSupportedLanguage 检查语言是否支持
func (i *I18n) IsSupportedLanguage(lang string) bool {
	_, exists := i.translators[lang]
	return exists
}
