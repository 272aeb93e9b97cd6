package planner

import (
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/report"
)

// Plan 是一次 apply 的复制计划。Jobs[i].Index 与 Files[i] 都对应 matched[i]。
type Plan struct {
	Jobs  []report.CopyJob
	Files []domain.FileResult
}

// PlanCopies 基于扫描结果与匹配结果生成确定性的复制计划（不做任何写入）。
//
// 规则：
// - 每条匹配结果对应一次复制：<asset.AbsPath> -> <outDir>/<filename><ext>
// - 同一 stem 出现多次（大小写不同的扩展名）时取扫描顺序中的第一个文件
// - filename 冲突不在这里处理：冲突的两条都会计划，由上层负责告警
func PlanCopies(assets []domain.ImageAsset, matched []domain.MatchResult, outDir, ext string) (Plan, error) {
	byStem := make(map[string]domain.ImageAsset, len(assets))
	for _, a := range assets {
		if _, ok := byStem[a.Stem]; !ok {
			byStem[a.Stem] = a
		}
	}

	p := Plan{
		Jobs:  make([]report.CopyJob, 0, len(matched)),
		Files: make([]domain.FileResult, 0, len(matched)),
	}
	for i, m := range matched {
		a, ok := byStem[m.Name]
		if !ok {
			return Plan{}, fmt.Errorf("匹配结果没有对应的图片文件：%q", m.Name)
		}
		if m.Filename == "" {
			return Plan{}, fmt.Errorf("匹配结果的 filename 为空：%q", m.Name)
		}
		dstName := m.Filename + ext
		p.Jobs = append(p.Jobs, report.CopyJob{Index: i, Src: a.AbsPath, DstName: dstName})
		p.Files = append(p.Files, domain.FileResult{
			Src:    a.AbsPath,
			Dst:    filepath.Join(outDir, dstName),
			Status: domain.FileStatusPlanned,
		})
	}
	return p, nil
}
