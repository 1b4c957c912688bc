// Package i18n 載入內嵌的 YAML 訊息目錄（fr、en），提供通知與表單文字。
package i18n

import (
	"bytes"
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Catalog 為單一語言的訊息表。
type Catalog struct {
	messages map[string]map[string]string
}

// Load 載入指定語言；未知語言回傳錯誤。
func Load(lang string) (*Catalog, error) {
	data, err := locales.ReadFile("locales/" + lang + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown locale: %s", lang)
	}
	var m map[string]map[string]string
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("cannot parse yaml for %s: %w", lang, err)
	}
	return &Catalog{messages: m}, nil
}

// MustLoad 同 Load，失敗時 panic；僅用於內嵌且已知存在的語言。
func MustLoad(lang string) *Catalog {
	c, err := Load(lang)
	if err != nil {
		panic(err)
	}
	return c
}

// T 取出 key 對應的訊息並以 args 格式化；找不到時回傳 key 本身。
func (c *Catalog) T(key string, args ...any) string {
	if c == nil || c.messages == nil {
		return key
	}
	val, ok := c.messages[key]
	if !ok {
		return key
	}
	text, ok := val["other"]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
