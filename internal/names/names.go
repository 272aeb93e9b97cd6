// Package names 生成“可用 emoji 名”列表（前端类型检查用）。
package names

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/infra/fsx"
)

// RenderJSON 输出紧凑的 JSON 字符串数组（无缩进、无末尾换行），顺序与 stems 一致。
// 不转义 HTML 字符：名字里的 '&' 原样保留。
func RenderJSON(stems []string) ([]byte, error) {
	if stems == nil {
		stems = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stems); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// RenderTS 输出 TypeScript 模块：导出 emojiNames 常量与 EmojiName 联合类型。
func RenderTS(stems []string) ([]byte, error) {
	lines := make([]string, 0, len(stems))
	for _, s := range stems {
		b, err := RenderJSON([]string{s})
		if err != nil {
			return nil, err
		}
		// RenderJSON 的单元素数组形如 ["x"]，去掉方括号即 TS 字符串字面量。
		lines = append(lines, "  "+string(b[1:len(b)-1])+",")
	}

	var b strings.Builder
	b.WriteString("// 由 emojiprep names 生成，请勿手工修改。\n")
	if len(lines) == 0 {
		b.WriteString("export const emojiNames = [] as const;\n")
	} else {
		b.WriteString("export const emojiNames = [\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n] as const;\n")
	}
	b.WriteString("\nexport type EmojiName = (typeof emojiNames)[number];\n")
	return []byte(b.String()), nil
}

// TSPath 从 JSON 路径推导 TS 路径：emojiNames.json -> emojiNames.ts。
func TSPath(jsonPath string) string {
	ext := filepath.Ext(jsonPath)
	if strings.EqualFold(ext, ".json") {
		return jsonPath[:len(jsonPath)-len(ext)] + ".ts"
	}
	return jsonPath + ".ts"
}

// Write 写出名字列表（withTS=true 时额外写 .ts）。
// 每个文件独立：一个失败不影响另一个。
func Write(jsonPath string, stems []string, withTS bool) []domain.FileResult {
	type output struct {
		path   string
		render func([]string) ([]byte, error)
	}
	outs := []output{{jsonPath, RenderJSON}}
	if withTS {
		outs = append(outs, output{TSPath(jsonPath), RenderTS})
	}

	return lo.Map(outs, func(o output, _ int) domain.FileResult {
		fr := domain.FileResult{Dst: o.path, Status: domain.FileStatusWritten}
		b, err := o.render(stems)
		if err == nil {
			err = fsx.WriteFileAtomicReplace(filepath.Dir(o.path), filepath.Base(o.path), b)
		}
		if err != nil {
			fr.Status = domain.FileStatusFailed
			fr.Error = err.Error()
		}
		return fr
	})
}
