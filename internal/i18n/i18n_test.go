package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	i := GetInstance()

	assert.Equal(t, "文件类型不允许", i.Translate("file_type_not_allowed", LangZhCN))
	assert.Equal(t, "Unsupported Media Type", i.Translate("file_type_not_allowed", LangEnUS))
	// 不支持的语言回落到默认语言
	assert.Equal(t, "文件类型不允许", i.Translate("file_type_not_allowed", "fr-FR"))
	assert.Equal(t, "missing_key", i.Translate("missing_key", LangEnUS))
}

func TestMatchLanguage(t *testing.T) {
	i := GetInstance()

	cases := map[string]string{
		"":                      LangZhCN,
		"en-US,en;q=0.9":        LangEnUS,
		"en":                    LangEnUS,
		"zh-TW;q=0.8, en;q=0.5": LangZhCN,
		"fr-FR, en-GB;q=0.7":    LangEnUS,
		"de-DE":                 LangZhCN,
		"en_US":                 LangEnUS,
	}
	for header, want := range cases {
		assert.Equal(t, want, i.MatchLanguage(header), header)
	}
}

func TestSetDefaultLanguageIgnoresUnsupported(t *testing.T) {
	i := GetInstance()
	before := i.GetDefaultLanguage()

	i.SetDefaultLanguage("xx-XX")
	assert.Equal(t, before, i.GetDefaultLanguage())

	i.SetDefaultLanguage(LangEnUS)
	assert.Equal(t, LangEnUS, i.GetDefaultLanguage())
	i.SetDefaultLanguage(before)
}
