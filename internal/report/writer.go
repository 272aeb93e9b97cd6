package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/infra/fsx"
	"github.com/John-Robertt/emojiprep/internal/infra/imgx"
	"github.com/John-Robertt/emojiprep/internal/logx"
	"github.com/John-Robertt/emojiprep/internal/pool"
)

// CopyJob 描述一次图片复制：Src 原样复制到 <OutDir>/<DstName>。
// Index 由调用方分配，用于把结果对回条目（复制按完成顺序返回）。
type CopyJob struct {
	Index   int
	Src     string
	DstName string
}

// CopyResult 是一次复制的结果。
type CopyResult struct {
	Index     int
	File      domain.FileResult
	ErrorCode string
	Bytes     int64
}

// WriteResult 汇总一次 Write 的全部副作用。
type WriteResult struct {
	Outputs []domain.FileResult
	Copies  []CopyResult // 按 Index 升序
	Bytes   int64        // 成功复制的总字节数
}

// Writer 负责报告落盘与图片复制。
//
// 约束：
// - 每个文件独立 best-effort：单个失败只记录 + 打日志，不影响其它写入
// - Write 返回前所有复制都已完成（不存在“进程退出时仍在写”的情况）
type Writer struct {
	OutDir       string
	Concurrency  int
	VerifyImages bool
	Logger       *slog.Logger

	// OnCopyDone 对每个 job 恰好调用一次，包括 ctx 结束后未执行的 job（dur=0）。
	// 可能来自多个 goroutine，实现必须并发安全。
	OnCopyDone func(r CopyResult, dur time.Duration)
}

// Write 写出三个报告文件，然后以有界并发执行全部复制。
func (w Writer) Write(ctx context.Context, paths Paths, art Artifacts, jobs []CopyJob) WriteResult {
	log := logx.OrNop(w.Logger)

	res := WriteResult{
		Outputs: make([]domain.FileResult, 0, 3),
	}
	for _, f := range []struct {
		path string
		data []byte
	}{
		{paths.Metadata, art.MetadataJSON},
		{paths.Mapping, art.MappingTXT},
		{paths.Unmatched, art.UnmatchedTXT},
	} {
		fr := domain.FileResult{Dst: f.path, Status: domain.FileStatusWritten}
		if err := fsx.WriteFileAtomicReplace(filepath.Dir(f.path), filepath.Base(f.path), f.data); err != nil {
			log.Error("写入报告失败", "path", f.path, "error", err)
			fr.Status = domain.FileStatusFailed
			fr.Error = err.Error()
		} else {
			log.Debug("已写入报告", "path", f.path, "bytes", len(f.data))
		}
		res.Outputs = append(res.Outputs, fr)
	}

	if len(jobs) == 0 {
		res.Copies = []CopyResult{}
		return res
	}

	if err := fsx.EnsureDir(w.OutDir); err != nil {
		// 输出目录不可用：所有复制直接失败，但报告文件已经写完。
		log.Error("创建输出目录失败", "dir", w.OutDir, "error", err)
		code := domain.ErrCodeIOFailed
		if fsx.IsPathTypeConflict(err) {
			code = domain.ErrCodeTargetConflict
		}
		res.Copies = make([]CopyResult, 0, len(jobs))
		for _, j := range jobs {
			r := CopyResult{
				Index:     j.Index,
				ErrorCode: code,
				File: domain.FileResult{
					Src:    j.Src,
					Dst:    filepath.Join(w.OutDir, j.DstName),
					Status: domain.FileStatusFailed,
					Error:  err.Error(),
				},
			}
			w.copyDone(r, 0)
			res.Copies = append(res.Copies, r)
		}
		return res
	}

	// 同一目标文件的 job 放进同一组、按 Index 串行执行：碰撞时固定是 Index 最大者的内容落盘。
	groups := groupByDst(jobs)
	batches := pool.Run(ctx, groups, w.Concurrency, func(ctx context.Context, g []CopyJob) []CopyResult {
		out := make([]CopyResult, 0, len(g))
		for _, j := range g {
			started := time.Now()
			r := w.copyOne(ctx, log, j)
			w.copyDone(r, time.Since(started))
			out = append(out, r)
		}
		return out
	})
	res.Copies = make([]CopyResult, 0, len(jobs))
	for _, b := range batches {
		res.Copies = append(res.Copies, b...)
	}
	if len(res.Copies) < len(jobs) {
		// ctx 结束后未开始的复制：同样记录为失败，保证每个 job 都有结果。
		res.Copies = append(res.Copies, w.skipped(ctx, jobs, res.Copies)...)
	}
	sort.Slice(res.Copies, func(i, k int) bool { return res.Copies[i].Index < res.Copies[k].Index })

	for _, c := range res.Copies {
		res.Bytes += c.Bytes
	}
	return res
}

func (w Writer) copyOne(ctx context.Context, log *slog.Logger, j CopyJob) CopyResult {
	dst := filepath.Join(w.OutDir, j.DstName)
	out := CopyResult{
		Index: j.Index,
		File:  domain.FileResult{Src: j.Src, Dst: dst, Status: domain.FileStatusWritten},
	}
	fail := func(code string, err error) CopyResult {
		log.Error("复制图片失败", "src", j.Src, "dst", dst, "error", err)
		out.ErrorCode = code
		out.File.Status = domain.FileStatusFailed
		out.File.Error = err.Error()
		return out
	}

	if err := ctx.Err(); err != nil {
		return fail(domain.ErrCodeCopyFailed, err)
	}

	var (
		n   int64
		err error
	)
	if w.VerifyImages {
		n, err = verifyAndCopy(j.Src, w.OutDir, j.DstName)
	} else {
		n, err = fsx.CopyFile(j.Src, w.OutDir, j.DstName)
	}
	if err != nil {
		code := domain.ErrCodeCopyFailed
		switch {
		case imgx.IsInvalidImage(err):
			code = domain.ErrCodeImageInvalid
		case fsx.IsPathTypeConflict(err):
			code = domain.ErrCodeTargetConflict
		}
		return fail(code, err)
	}

	out.Bytes = n
	return out
}

func (w Writer) skipped(ctx context.Context, jobs []CopyJob, done []CopyResult) []CopyResult {
	seen := make(map[int]struct{}, len(done))
	for _, c := range done {
		seen[c.Index] = struct{}{}
	}
	err := ctx.Err()
	if err == nil {
		err = context.Canceled
	}
	var out []CopyResult
	for _, j := range jobs {
		if _, ok := seen[j.Index]; ok {
			continue
		}
		r := CopyResult{
			Index:     j.Index,
			ErrorCode: domain.ErrCodeCopyFailed,
			File: domain.FileResult{
				Src:    j.Src,
				Dst:    filepath.Join(w.OutDir, j.DstName),
				Status: domain.FileStatusFailed,
				Error:  err.Error(),
			},
		}
		w.copyDone(r, 0)
		out = append(out, r)
	}
	return out
}

func (w Writer) copyDone(r CopyResult, dur time.Duration) {
	if w.OnCopyDone != nil {
		w.OnCopyDone(r, dur)
	}
}

// groupByDst 按目标文件名分组；组内按 Index 升序，组间按首个 Index 升序。
func groupByDst(jobs []CopyJob) [][]CopyJob {
	sorted := append([]CopyJob(nil), jobs...)
	sort.SliceStable(sorted, func(i, k int) bool { return sorted[i].Index < sorted[k].Index })

	pos := make(map[string]int, len(sorted))
	groups := make([][]CopyJob, 0, len(sorted))
	for _, j := range sorted {
		i, ok := pos[j.DstName]
		if !ok {
			i = len(groups)
			pos[j.DstName] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], j)
	}
	return groups
}

// verifyAndCopy 先确认源字节是可识别的图片，再原样写出。
func verifyAndCopy(src, dir, name string) (int64, error) {
	b, err := os.ReadFile(src)
	if err != nil {
		return 0, err
	}
	if _, err := imgx.Probe(b); err != nil {
		return 0, fmt.Errorf("%s：%w", src, err)
	}
	if err := fsx.WriteFileAtomicReplace(dir, name, b); err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}
