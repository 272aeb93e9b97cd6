// Package unicodeorg 从 unicode.org 的 emoji chart 页面导入数据集。
package unicodeorg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/infra/cache"
	"github.com/John-Robertt/emojiprep/internal/infra/httpx"
	"github.com/John-Robertt/emojiprep/internal/logx"
)

// DefaultURLs 覆盖基础 emoji 与全部肤色变体。
var DefaultURLs = []string{
	"https://unicode.org/emoji/charts/emoji-list.html",
	"https://unicode.org/emoji/charts/full-emoji-modifiers.html",
}

// Error 是导入阶段的可追溯错误。
type Error struct {
	Stage string // "fetch" 或 "parse"
	URL   string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("unicodeorg stage=%s url=%s: %v", e.Stage, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Importer 抓取并解析一组 chart 页面。
//
// 约束：
// - 页面并发抓取，任意一页失败即取消其余页面（fail-fast）
// - 结果按 URL 顺序拼接，与完成顺序无关
// - Cache 非空时优先读缓存；Refresh=true 时跳过读取，但仍回写
type Importer struct {
	Client  *http.Client
	Cache   *cache.Store
	Refresh bool
	Logger  *slog.Logger
}

// FetchAll 返回按 name 去重（保留首次出现）的记录。
func (im Importer) FetchAll(ctx context.Context, urls []string) ([]domain.EmojiRecord, error) {
	if len(urls) == 0 {
		return nil, errors.New("未指定任何 URL")
	}

	pages := make([][]domain.EmojiRecord, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			html, err := im.fetch(gctx, u)
			if err != nil {
				return &Error{Stage: "fetch", URL: u, Err: err}
			}
			recs, err := Parse(html)
			if err != nil {
				return &Error{Stage: "parse", URL: u, Err: err}
			}
			pages[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := lo.Flatten(pages)
	return lo.UniqBy(all, func(r domain.EmojiRecord) string { return r.Name }), nil
}

func (im Importer) fetch(ctx context.Context, u string) ([]byte, error) {
	log := logx.OrNop(im.Logger)

	if im.Cache != nil && !im.Refresh {
		b, ok, err := im.Cache.ReadPage(u)
		if err != nil {
			log.Warn("读取页面缓存失败", "url", u, "error", err)
		} else if ok {
			log.Debug("命中页面缓存", "url", u)
			return b, nil
		}
	}

	log.Info("抓取页面", "url", u)
	b, err := httpx.Get(ctx, im.Client, u)
	if err != nil {
		return nil, err
	}

	if im.Cache != nil {
		if err := im.Cache.WritePage(u, b); err != nil && !errors.Is(err, cache.ErrReadOnly) {
			log.Warn("写入页面缓存失败", "url", u, "error", err)
		}
	}
	return b, nil
}

// Parse 把 chart 页面 HTML 解析为 EmojiRecord。纯函数：相同输入 => 相同输出。
//
// 表格结构：th.bighead 行切换分类；数据行含 td.name，
// 字形取 td.chars，不存在时回退到行内 img[alt]。
func Parse(html []byte) ([]domain.EmojiRecord, error) {
	if len(html) == 0 {
		return nil, errors.New("html 为空")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var (
		category string
		out      []domain.EmojiRecord
	)
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if h := tr.Find("th.bighead").First(); h.Length() > 0 {
			category = normSpace(h.Text())
			return
		}
		nameCell := tr.Find("td.name").First()
		if nameCell.Length() == 0 {
			return
		}
		name := cleanName(nameCell.Text())
		if name == "" {
			return
		}
		glyph := strings.TrimSpace(tr.Find("td.chars").First().Text())
		if glyph == "" {
			glyph, _ = tr.Find("img[alt]").First().Attr("alt")
			glyph = strings.TrimSpace(glyph)
		}
		if glyph == "" {
			return
		}
		out = append(out, domain.EmojiRecord{Name: name, Glyph: glyph, Category: category})
	})

	if len(out) == 0 {
		return nil, errors.New("页面中未找到任何 emoji 行")
	}
	return out, nil
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

// cleanName 去掉新增标记（⊛）并规整空白。
func cleanName(s string) string {
	s = strings.ReplaceAll(s, "⊛", "")
	return normSpace(s)
}
