package run

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/John-Robertt/emojiprep/internal/config"
	"github.com/John-Robertt/emojiprep/internal/dataset"
	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/infra/cache"
	"github.com/John-Robertt/emojiprep/internal/infra/httpx"
	"github.com/John-Robertt/emojiprep/internal/logx"
	"github.com/John-Robertt/emojiprep/internal/provider/unicodeorg"
)

// ImportReport 是 import 命令的输出。
type ImportReport struct {
	Path       string            `json:"path"`
	DryRun     bool              `json:"dry_run"`
	URLs       []string          `json:"urls"`
	Records    int               `json:"records"`
	Categories []string          `json:"categories"`
	Output     domain.FileResult `json:"output"`
}

// Import 从 unicode.org chart 页面生成数据集。
//
// dry-run：只抓取与解析（缓存只读），不写数据集；apply：原子覆盖 eff.Dataset 并回写页面缓存。
func Import(ctx context.Context, eff config.EffectiveConfig, log *slog.Logger) (ImportReport, error) {
	log = logx.OrNop(log)

	urls := eff.DatasetURLs
	if len(urls) == 0 {
		urls = unicodeorg.DefaultURLs
	}

	client, err := httpx.NewMetaClient(eff.ProxyURL)
	if err != nil {
		return ImportReport{}, fmt.Errorf("proxy.url 无效：%w", err)
	}
	store := cache.New(eff.Path, !eff.Apply)

	im := unicodeorg.Importer{
		Client:  client,
		Cache:   &store,
		Refresh: eff.Refresh,
		Logger:  log,
	}
	recs, err := im.FetchAll(ctx, urls)
	if err != nil {
		log.Error("导入数据集失败", "error", err)
		return ImportReport{}, err
	}

	rep := ImportReport{
		Path:       eff.Path,
		DryRun:     !eff.Apply,
		URLs:       append([]string(nil), urls...),
		Records:    len(recs),
		Categories: lo.Uniq(lo.Map(recs, func(r domain.EmojiRecord, _ int) string { return r.Category })),
		Output:     domain.FileResult{Dst: eff.Dataset, Status: domain.FileStatusPlanned},
	}
	if !eff.Apply {
		return rep, nil
	}

	if err := dataset.Write(eff.Dataset, recs); err != nil {
		log.Error("写入数据集失败", "path", eff.Dataset, "error", err)
		rep.Output.Status = domain.FileStatusFailed
		rep.Output.Error = err.Error()
		return rep, err
	}
	rep.Output.Status = domain.FileStatusWritten
	log.Info("已写入数据集", "path", eff.Dataset, "records", len(recs))
	return rep, nil
}
