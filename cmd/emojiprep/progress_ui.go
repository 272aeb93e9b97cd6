package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/John-Robertt/emojiprep/internal/app/run"
	"github.com/John-Robertt/emojiprep/internal/config"
	"github.com/John-Robertt/emojiprep/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的简洁进度输出。
//
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：长时间无条目完成时也会定期输出一行
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	workers int
	total   int
	done    int
	ok      int
	fail    int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "dry-run"
	modeHint := " (不写入/不复制)"
	if eff.Apply {
		mode = "apply"
		modeHint = ""
	}

	fmt.Fprintf(p.w, "[%s] emojiprep run (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  images: %s (*%s)\n", eff.ImagesDir, eff.Ext)
	fmt.Fprintf(p.w, "  dataset: %s\n", eff.Dataset)
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	fmt.Fprintf(p.w, "  legacy_double_match: %s\n", onOff(eff.LegacyDoubleMatch))
	fmt.Fprintf(p.w, "  verify_images: %s\n", onOff(eff.VerifyImages))
	fmt.Fprintf(p.w, "  shortcodes: %s\n", onOff(eff.Shortcodes))
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))

	fmt.Fprintln(p.w, "输出:")
	fmt.Fprintf(p.w, "  metadata: %s\n", eff.ReportPath)
	fmt.Fprintf(p.w, "  out: %s\n", eff.OutDir)
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: images=%d (%s)\n", intField(fields, "images"), formatShortDuration(dur))
	case "dataset":
		fmt.Fprintf(p.w, "数据集: records=%d (%s)\n", intField(fields, "records"), formatShortDuration(dur))
	case "match":
		fmt.Fprintf(p.w, "匹配: matched=%d unmatched=%d collisions=%d (%s)\n",
			intField(fields, "matched"),
			intField(fields, "unmatched"),
			intField(fields, "collisions"),
			formatShortDuration(dur),
		)
	case "write":
		p.workers = intField(fields, "workers")
		p.total = intField(fields, "total_items")
		fmt.Fprintf(p.w, "写入: workers=%d total_items=%d\n\n", p.workers, p.total)
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	case "done":
		fmt.Fprintf(p.w, "\n复制: %d 个文件，共 %s (%s)\n",
			intField(fields, "copied"),
			humanize.Bytes(uint64(intField(fields, "bytes"))),
			formatShortDuration(dur),
		)
		p.stopTickerLocked()
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch res.Status {
	case domain.StatusFailed:
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			idx, total, res.Name, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	default:
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] %s OK -> %s pass=%s (%s)\n",
			idx, total, res.Name, res.Filename, res.Pass, formatShortDuration(dur),
		)
	}

	p.lastPrinted = time.Now()

	// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
	if p.done >= p.total {
		p.stopTickerLocked()
	}
}

func (p *progressUI) OnProgress(done, total, ok, fail, active int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d active=%d elapsed=%s\n",
		done, total, ok, fail, active, formatElapsed(elapsed),
	)
	p.lastPrinted = time.Now()
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}
	stopCh := p.stopCh

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					active := p.workers
					if remain := p.total - p.done; remain < active {
						active = remain
					}
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d active=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.fail, active, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stopCh:
				return
			}
		}
	}()
}

func (p *progressUI) stopTickerLocked() {
	if !p.tickerStarted {
		return
	}
	close(p.stopCh)
	p.tickerStarted = false
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}
