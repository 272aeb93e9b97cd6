// Package shortcode 为 emoji 字形反查 :shortcode:（例如 😀 -> :grinning:）。
package shortcode

import (
	"strings"
	"sync"

	"github.com/kyokomi/emoji/v2"
)

// variationSelector16 是“emoji 呈现”选择符；数据集与 shortcode 表对它的使用并不一致。
const variationSelector16 = "\ufe0f"

// Table 是字形 -> shortcode 的只读反查表。
type Table struct {
	byGlyph map[string]string
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// Default 返回基于 kyokomi/emoji 内置码表构建的共享反查表（惰性构建一次）。
func Default() *Table {
	defaultTableOnce.Do(func() {
		defaultTable = FromCodeMap(emoji.CodeMap())
	})
	return defaultTable
}

// FromCodeMap 用 ":alias:" -> 字形 的映射构建反查表。
//
// 同一字形有多个别名时，取最短的一个；等长取字典序最小，保证输出稳定。
func FromCodeMap(codes map[string]string) *Table {
	t := &Table{byGlyph: make(map[string]string, len(codes))}
	for alias, glyph := range codes {
		glyph = strings.TrimSpace(glyph)
		if glyph == "" || alias == "" {
			continue
		}
		if !strings.HasPrefix(alias, ":") {
			alias = ":" + strings.Trim(alias, ":") + ":"
		}
		for _, key := range keys(glyph) {
			if cur, ok := t.byGlyph[key]; ok && !better(alias, cur) {
				continue
			}
			t.byGlyph[key] = alias
		}
	}
	return t
}

// Shortcode 查找 glyph 对应的 shortcode。
func (t *Table) Shortcode(glyph string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, key := range keys(strings.TrimSpace(glyph)) {
		if s, ok := t.byGlyph[key]; ok {
			return s, true
		}
	}
	return "", false
}

// Len 返回表中字形数量。
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byGlyph)
}

func keys(glyph string) []string {
	stripped := strings.ReplaceAll(glyph, variationSelector16, "")
	if stripped == glyph {
		return []string{glyph}
	}
	return []string{glyph, stripped}
}

func better(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
