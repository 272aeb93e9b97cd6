package run

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/John-Robertt/emojiprep/internal/config"
	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/logx"
	"github.com/John-Robertt/emojiprep/internal/names"
	"github.com/John-Robertt/emojiprep/internal/scan"
)

// NamesReport 是 names 命令的输出。
type NamesReport struct {
	Path    string              `json:"path"`
	Names   int                 `json:"names"`
	Outputs []domain.FileResult `json:"outputs"`
}

// Names 扫描图片目录，把原始名（去扩展名）写为 JSON 数组；NamesTS 时额外写 TS 模块。
// 列目录失败返回 error；单个输出文件失败记录在 Outputs 中。
func Names(ctx context.Context, eff config.EffectiveConfig, log *slog.Logger) (NamesReport, error) {
	log = logx.OrNop(log)
	if err := ctx.Err(); err != nil {
		return NamesReport{}, err
	}

	assets, err := scan.ScanImages(eff.ImagesDir, eff.Ext)
	if err != nil {
		log.Error("扫描图片目录失败", "dir", eff.ImagesDir, "error", err)
		return NamesReport{}, fmt.Errorf("扫描失败：%w", err)
	}
	stems := scan.Stems(assets)

	outs := names.Write(eff.NamesPath, stems, eff.NamesTS)
	for _, o := range outs {
		if o.Status == domain.FileStatusFailed {
			log.Error("写入名字列表失败", "path", o.Dst, "error", o.Error)
			continue
		}
		log.Info("已写入名字列表", "path", o.Dst, "names", len(stems))
	}

	return NamesReport{Path: eff.Path, Names: len(stems), Outputs: outs}, nil
}
