// Package match 把图片文件名与 emoji 数据集做交叉匹配。
package match

import (
	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/modifier"
	"github.com/John-Robertt/emojiprep/internal/slug"
)

// ShortcodeLookup 根据字形查 :shortcode:（可选增强，不参与匹配判定）。
type ShortcodeLookup interface {
	Shortcode(glyph string) (string, bool)
}

type Option func(*Matcher)

// WithLegacyDoubleMatch 复现旧脚本的行为：两轮匹配互不短路，
// 先输出所有 direct 结果，再输出所有 modifier 结果；同一图片可能出现两次。
func WithLegacyDoubleMatch() Option {
	return func(m *Matcher) { m.legacy = true }
}

// WithShortcodes 为每条结果附加 shortcode。
func WithShortcodes(l ShortcodeLookup) Option {
	return func(m *Matcher) { m.shortcodes = l }
}

// Matcher 持有数据集与预先归一化的索引。
//
// 两个索引都是 slug -> 数据集下标，只保留第一次出现的下标，
// 所以“数据集顺序靠前者胜出”在建索引时就已确定。
// 归一化后为空串的名称不进索引：空 slug 无法生成有效文件名。
type Matcher struct {
	records []domain.EmojiRecord

	direct   map[string]int
	compound map[string]int

	legacy     bool
	shortcodes ShortcodeLookup
}

// New 构造 Matcher。dataset 只读，不会被修改。
func New(dataset []domain.EmojiRecord, opts ...Option) *Matcher {
	m := &Matcher{
		records:  dataset,
		direct:   make(map[string]int, len(dataset)),
		compound: make(map[string]int, len(dataset)/2),
	}
	for _, o := range opts {
		o(m)
	}

	for i, rec := range dataset {
		key := slug.Normalize(rec.Name)
		if _, ok := m.direct[key]; !ok && key != "" {
			m.direct[key] = i
		}

		p, ok := modifier.Parse(rec.Name)
		if !ok {
			continue
		}
		ckey := slug.Normalize(p.Compound())
		if _, ok := m.compound[ckey]; !ok && ckey != "" {
			m.compound[ckey] = i
		}
	}
	return m
}

// Match 对单个原始文件名执行两轮匹配：direct 命中即返回，否则尝试 modifier。
func (m *Matcher) Match(stem string) (domain.MatchResult, bool) {
	key := slug.Normalize(stem)
	if r, ok := m.lookup(m.direct, stem, key, domain.PassDirect); ok {
		return r, true
	}
	return m.lookup(m.compound, stem, key, domain.PassModifier)
}

// MatchAll 按输入顺序匹配全部文件名。
//
// unmatched 中每个未命中的文件名恰好出现一次，且不会出现在 matched 中。
func (m *Matcher) MatchAll(stems []string) (matched []domain.MatchResult, unmatched []string) {
	if m.legacy {
		return m.matchAllLegacy(stems)
	}

	matched = make([]domain.MatchResult, 0, len(stems))
	unmatched = make([]string, 0)

	for _, s := range stems {
		if r, ok := m.Match(s); ok {
			matched = append(matched, r)
			continue
		}
		unmatched = append(unmatched, s)
	}
	return matched, unmatched
}

func (m *Matcher) matchAllLegacy(stems []string) ([]domain.MatchResult, []string) {
	keys := make([]string, len(stems))
	for i, s := range stems {
		keys[i] = slug.Normalize(s)
	}

	hit := make([]bool, len(stems))
	matched := make([]domain.MatchResult, 0, len(stems))
	for _, pass := range []struct {
		index map[string]int
		name  string
	}{
		{m.direct, domain.PassDirect},
		{m.compound, domain.PassModifier},
	} {
		for i, s := range stems {
			if r, ok := m.lookup(pass.index, s, keys[i], pass.name); ok {
				matched = append(matched, r)
				hit[i] = true
			}
		}
	}

	unmatched := make([]string, 0)
	for i, s := range stems {
		if !hit[i] {
			unmatched = append(unmatched, s)
		}
	}
	return matched, unmatched
}

func (m *Matcher) lookup(index map[string]int, stem, key, pass string) (domain.MatchResult, bool) {
	i, ok := index[key]
	if !ok {
		return domain.MatchResult{}, false
	}
	rec := m.records[i]
	r := domain.MatchResult{
		Name:     stem,
		Filename: key,
		Alt:      rec.Glyph,
		Category: rec.Category,
		Pass:     pass,
		Source:   rec,
	}
	if m.shortcodes != nil {
		if sc, ok := m.shortcodes.Shortcode(rec.Glyph); ok {
			r.Shortcode = sc
		}
	}
	return r, true
}
