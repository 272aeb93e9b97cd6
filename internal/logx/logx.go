// Package logx 集中构造 slog.Logger。
//
// 约束：日志只写 stderr（或调用方给的 writer），绝不写 stdout：
// stdout 非 TTY 时只允许输出一个 RunReport JSON。
package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel 解析 debug|info|warn|error（大小写不敏感）；空串视为 info。
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level 只能是 debug/info/warn/error，实际是 %q", s)
	}
	return lv, nil
}

// New 返回写到 w 的文本格式 logger。
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Nop 返回丢弃一切输出的 logger（Enabled 恒为 false，格式化开销为零）。
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

// OrNop 在 l 为 nil 时返回 Nop()，便于把 logger 作为可选依赖传递。
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
