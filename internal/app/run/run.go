package run

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/emojiprep/internal/app"
	"github.com/John-Robertt/emojiprep/internal/app/planner"
	"github.com/John-Robertt/emojiprep/internal/config"
	"github.com/John-Robertt/emojiprep/internal/dataset"
	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/logx"
	"github.com/John-Robertt/emojiprep/internal/match"
	"github.com/John-Robertt/emojiprep/internal/report"
	"github.com/John-Robertt/emojiprep/internal/scan"
	"github.com/John-Robertt/emojiprep/internal/shortcode"
)

// Execute 执行一次 run（dry-run/apply），并返回对外稳定的 RunReport。
// 单个文件的写入/复制失败只降级为条目失败，不影响其它文件。
func Execute(ctx context.Context, eff config.EffectiveConfig, log *slog.Logger) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, log, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
//
// 流程固定为串行阶段：scan -> dataset -> match -> write；
// write 阶段内部的复制有界并发，且在返回前全部完成。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, log *slog.Logger, obs Observer) domain.RunReport {
	log = logx.OrNop(log)
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Path:      eff.Path,
		DryRun:    !eff.Apply,
		StartedAt: started,
		Items:     make([]domain.ItemResult, 0, 128),
	}
	log = log.With("run_id", rr.RunID)

	abort := func(code, msg string) domain.RunReport {
		rr.Items = append(rr.Items, syntheticFailed(code, msg))
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	scanStarted := time.Now()
	assets, err := scan.ScanImages(eff.ImagesDir, eff.Ext)
	if err != nil {
		log.Error("扫描图片目录失败", "dir", eff.ImagesDir, "error", err)
		return abort(domain.ErrCodeIOFailed, fmt.Sprintf("扫描失败：%v", err))
	}
	stems := scan.Stems(assets)
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{"images": len(assets)}, time.Since(scanStarted))
	}

	dsStarted := time.Now()
	records, err := dataset.Load(eff.Dataset)
	if err != nil {
		code := domain.ErrCodeIOFailed
		if dataset.IsInvalid(err) {
			code = domain.ErrCodeDatasetInvalid
		}
		log.Error("读取数据集失败", "path", eff.Dataset, "error", err)
		return abort(code, fmt.Sprintf("读取数据集失败：%v", err))
	}
	if obs != nil {
		obs.OnPhaseDone("dataset", map[string]any{"records": len(records)}, time.Since(dsStarted))
	}

	matchStarted := time.Now()
	var opts []match.Option
	if eff.LegacyDoubleMatch {
		opts = append(opts, match.WithLegacyDoubleMatch())
	}
	if eff.Shortcodes {
		opts = append(opts, match.WithShortcodes(shortcode.Default()))
	}
	matched, unmatched := match.New(records, opts...).MatchAll(stems)

	collisions := app.GroupByFilename(matched)
	for _, c := range collisions {
		log.Warn("多个图片归一化到同一个 filename", "filename", c.Filename, "names", c.Names)
	}
	rr.Summary.Collisions = len(collisions)
	if obs != nil {
		obs.OnPhaseDone("match", map[string]any{
			"matched":    len(matched),
			"unmatched":  len(unmatched),
			"collisions": len(collisions),
		}, time.Since(matchStarted))
	}

	assetByStem := make(map[string]domain.ImageAsset, len(assets))
	for _, a := range assets {
		if _, ok := assetByStem[a.Stem]; !ok {
			assetByStem[a.Stem] = a
		}
	}
	for _, u := range unmatched {
		log.Debug("未匹配", "name", u)
		rr.Items = append(rr.Items, unmatchedItem(u, assetByStem[u].AbsPath))
	}

	plan, err := planner.PlanCopies(assets, matched, eff.OutDir, eff.Ext)
	if err != nil {
		log.Error("生成复制计划失败", "error", err)
		return abort(domain.ErrCodeIOFailed, fmt.Sprintf("规划失败：%v", err))
	}
	items := make([]domain.ItemResult, len(matched))
	for i, m := range matched {
		items[i] = matchedItem(m, plan.Files[i])
	}

	paths := report.PathsFor(eff.ReportPath)
	if !eff.Apply {
		rr.Items = append(rr.Items, items...)
		rr.Outputs = plannedOutputs(paths)
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	art, err := report.Build(matched, unmatched)
	if err != nil {
		log.Error("生成报告失败", "error", err)
		return abort(domain.ErrCodeWriteFailed, fmt.Sprintf("生成报告失败：%v", err))
	}

	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}
	if obs != nil {
		obs.OnPhaseDone("write", map[string]any{
			"workers":     workers,
			"total_items": len(plan.Jobs),
		}, 0)
	}

	var (
		mu   sync.Mutex
		done int
	)
	writeStarted := time.Now()
	w := report.Writer{
		OutDir:       eff.OutDir,
		Concurrency:  workers,
		VerifyImages: eff.VerifyImages,
		Logger:       log,
	}
	if obs != nil {
		w.OnCopyDone = func(r report.CopyResult, dur time.Duration) {
			// items 在 Write 返回前只读；这里取副本再套用结果。
			it := applyCopy(items[r.Index], r)
			mu.Lock()
			defer mu.Unlock()
			done++
			obs.OnItemDone(done, len(plan.Jobs), it, dur)
		}
	}
	wr := w.Write(ctx, paths, art, plan.Jobs)
	for _, c := range wr.Copies {
		items[c.Index] = applyCopy(items[c.Index], c)
	}
	rr.Items = append(rr.Items, items...)
	rr.Outputs = wr.Outputs

	if obs != nil {
		obs.OnPhaseDone("done", map[string]any{
			"copied": countWritten(wr.Copies),
			"bytes":  wr.Bytes,
		}, time.Since(writeStarted))
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func matchedItem(m domain.MatchResult, planned domain.FileResult) domain.ItemResult {
	return domain.ItemResult{
		Name:     m.Name,
		Filename: m.Filename,
		Alt:      m.Alt,
		Pass:     m.Pass,
		Status:   domain.StatusMatched,
		Files:    []domain.FileResult{planned},
	}
}

func applyCopy(it domain.ItemResult, c report.CopyResult) domain.ItemResult {
	it.Files = []domain.FileResult{c.File}
	if c.File.Status == domain.FileStatusFailed {
		it.Status = domain.StatusFailed
		it.ErrorCode = c.ErrorCode
		it.ErrorMsg = c.File.Error
	}
	return it
}

func unmatchedItem(name, src string) domain.ItemResult {
	return domain.ItemResult{
		Name:      name,
		Status:    domain.StatusUnmatched,
		ErrorCode: domain.ErrCodeUnmatchedName,
		ErrorMsg:  "数据集中没有与该文件名匹配的 emoji（直接匹配与修饰符匹配均失败）",
		Files: []domain.FileResult{{
			Src:    src,
			Dst:    "",
			Status: domain.FileStatusFailed,
		}},
	}
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
		Files:     []domain.FileResult{},
	}
}

func plannedOutputs(p report.Paths) []domain.FileResult {
	return []domain.FileResult{
		{Dst: p.Metadata, Status: domain.FileStatusPlanned},
		{Dst: p.Mapping, Status: domain.FileStatusPlanned},
		{Dst: p.Unmatched, Status: domain.FileStatusPlanned},
	}
}

func countWritten(copies []report.CopyResult) int {
	n := 0
	for _, c := range copies {
		if c.File.Status == domain.FileStatusWritten {
			n++
		}
	}
	return n
}
