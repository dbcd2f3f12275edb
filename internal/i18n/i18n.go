package i18n

import (
	"fmt"
	"strings"

	"github.com/wellnest-next/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认站点语言
const DefaultLocale = constants.LocaleZhCN

// 常用语言别名
const (
	LocaleZH = constants.LocaleZhCN
	LocaleEN = constants.LocaleEnUS
)

// ContextLocaleKey 请求上下文中的语言键
const ContextLocaleKey = "locale"

// ResolveLocale 解析请求语言：优先上下文，其次 lang 参数，再次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if value, ok := c.Get(ContextLocaleKey); ok {
		if locale, ok := value.(string); ok && locale != "" {
			return locale
		}
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		if locale := matchLocale(lang); locale != "" {
			return locale
		}
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		if locale := matchLocale(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// T 按语言取文案，找不到时回退默认语言，再退回 key 本身
func T(locale, key string) string {
	if catalog, ok := messages[normalizeLocale(locale)]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按语言取带占位符的文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func normalizeLocale(locale string) string {
	if matched := matchLocale(locale); matched != "" {
		return matched
	}
	return DefaultLocale
}

func matchLocale(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ""
	}
	for _, locale := range constants.SupportedLocales {
		if strings.EqualFold(locale, tag) {
			return locale
		}
	}
	// 仅语言前缀匹配（如 en -> en-US）
	for _, locale := range constants.SupportedLocales {
		if strings.HasPrefix(strings.ToLower(locale), strings.SplitN(tag, "-", 2)[0]) {
			return locale
		}
	}
	return ""
}
