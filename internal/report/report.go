// Package report 把匹配结果组装为三个报告产物，并负责落盘与图片复制。
package report

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

// Artifacts 是同一输入确定性生成的三个报告产物。
type Artifacts struct {
	// MetadataJSON 是 MatchResult 数组（2 空格缩进），顺序与图片处理顺序一致。
	MetadataJSON []byte
	// MappingTXT 每行 "name;filename;alt"，换行拼接，末尾无换行。
	MappingTXT []byte
	// UnmatchedTXT 每行一个未匹配的原始名，换行拼接，末尾无换行。
	UnmatchedTXT []byte
}

// Build 生成报告产物，不做任何 IO。
func Build(matched []domain.MatchResult, unmatched []string) (Artifacts, error) {
	if matched == nil {
		matched = []domain.MatchResult{}
	}
	meta, err := json.MarshalIndent(matched, "", "  ")
	if err != nil {
		return Artifacts{}, err
	}

	lines := lo.Map(matched, func(r domain.MatchResult, _ int) string {
		return r.Name + ";" + r.Filename + ";" + r.Alt
	})

	return Artifacts{
		MetadataJSON: meta,
		MappingTXT:   []byte(strings.Join(lines, "\n")),
		UnmatchedTXT: []byte(strings.Join(unmatched, "\n")),
	}, nil
}

// Paths 是三个报告文件的位置。
type Paths struct {
	Metadata  string
	Mapping   string
	Unmatched string
}

// PathsFor 从 metadata 路径推导另外两个文件：emoji.json -> emoji.txt / emoji.not.txt。
// 路径不以 .json 结尾时直接追加后缀。
func PathsFor(metadataPath string) Paths {
	base := metadataPath
	if strings.HasSuffix(strings.ToLower(base), ".json") {
		base = base[:len(base)-len(".json")]
	}
	return Paths{
		Metadata:  metadataPath,
		Mapping:   base + ".txt",
		Unmatched: base + ".not.txt",
	}
}
