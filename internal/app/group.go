package app

import (
	"sort"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

// Collision 表示多个不同的原始名归一化到了同一个 filename。
type Collision struct {
	Filename string
	Names    []string
}

// GroupByFilename 把匹配结果按 filename 分组，只返回包含 2 个及以上不同原始名的组。
//
// - 结果按 Filename 字典序稳定排序
// - 组内 Names 保持匹配结果中的首次出现顺序
// - 同一个原始名重复出现（例如 legacy 双重匹配）不算冲突
func GroupByFilename(matched []domain.MatchResult) []Collision {
	index := make(map[string]int, len(matched))
	groups := make([]Collision, 0, 8)
	seen := make(map[[2]string]struct{}, len(matched))

	for _, m := range matched {
		key := [2]string{m.Filename, m.Name}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if idx, ok := index[m.Filename]; ok {
			groups[idx].Names = append(groups[idx].Names, m.Name)
			continue
		}
		index[m.Filename] = len(groups)
		groups = append(groups, Collision{Filename: m.Filename, Names: []string{m.Name}})
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Names) > 1 {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out
}
