package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/emojiprep/internal/logx"
	"github.com/John-Robertt/emojiprep/internal/scan"
)

// FileName 是配置文件的固定文件名。
const FileName = "emojiprep.json"

const (
	// ErrCodeNotFound 表示无参运行但 cwd 下没有 emojiprep.json。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示无参运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

// 内置默认值（相对路径均以 path 为基准）。
const (
	DefaultImagesDir   = "72x72"
	DefaultDataset     = "emojis.json"
	DefaultOutDir      = "emoji"
	DefaultReportPath  = "emoji.json"
	DefaultNamesPath   = "emojiNames.json"
	DefaultExt         = ".png"
	DefaultConcurrency = 4
	DefaultLogLevel    = "info"

	MaxConcurrency = 32
)

// CLIArgs 是 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config.apply=true。
type CLIArgs struct {
	Path string

	Apply    bool
	ApplySet bool

	Legacy    bool
	LegacySet bool

	TS    bool
	TSSet bool

	// URLs 非空时整体替换 dataset_urls。
	URLs []string

	// Refresh 只来自 CLI：导入时忽略页面缓存。
	Refresh bool
}

// FileConfig 对应 emojiprep.json 的解析结构。未知字段忽略。
type FileConfig struct {
	Path              string       `json:"path"`
	ImagesDir         string       `json:"images_dir"`
	Dataset           string       `json:"dataset"`
	OutDir            string       `json:"out_dir"`
	ReportPath        string       `json:"report_path"`
	NamesPath         string       `json:"names_path"`
	NamesTS           *bool        `json:"names_ts"`
	Ext               string       `json:"ext"`
	Apply             *bool        `json:"apply"`
	Concurrency       int          `json:"concurrency"`
	LegacyDoubleMatch *bool        `json:"legacy_double_match"`
	VerifyImages      bool         `json:"verify_images"`
	Shortcodes        bool         `json:"shortcodes"`
	Proxy             *ProxyConfig `json:"proxy"`
	DatasetURLs       []string     `json:"dataset_urls"`
	LogLevel          string       `json:"log_level"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
// 所有路径字段都是绝对路径。
type EffectiveConfig struct {
	Path string

	ImagesDir  string
	Dataset    string
	OutDir     string
	ReportPath string
	NamesPath  string
	NamesTS    bool
	Ext        string

	Apply             bool
	Concurrency       int
	LegacyDoubleMatch bool
	VerifyImages      bool
	Shortcodes        bool

	ProxyURL    string
	DatasetURLs []string
	Refresh     bool

	LogLevel string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/emojiprep.json（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/emojiprep.json（必选），且其中必须包含 path
//
// 覆盖优先级（固定）：
// - path：CLI path > config path
// - apply / legacy_double_match / names_ts：CLI 显式值 > config > 默认 false
// - dataset_urls：CLI --url > config > 内置默认（由导入方决定）
// - 其他字段：仅由 config 控制
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选，位置固定在 <path>/emojiprep.json。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, FileName)

		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return merge(absPath, cli, fc, cfgPath)
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	absPath := absCleanFrom(cwdAbs, fc.Path)
	return merge(absPath, cli, fc, cfgPath)
}

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}

	ext := scan.NormalizeExt(orDefault(fc.Ext, DefaultExt))
	if ext == "." || strings.ContainsAny(ext, `/\`) {
		return invalid(fmt.Errorf("ext 无效：%q", fc.Ext))
	}

	logLevel := strings.ToLower(orDefault(fc.LogLevel, DefaultLogLevel))
	if _, err := logx.ParseLevel(logLevel); err != nil {
		return invalid(err)
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return invalid(fmt.Errorf("proxy.url 无效：%w", err))
		}
	}

	urls := fc.DatasetURLs
	if len(cli.URLs) > 0 {
		urls = cli.URLs
	}
	cleanURLs := make([]string, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return invalid(fmt.Errorf("dataset_urls 必须是 http/https URL：%q", raw))
		}
		cleanURLs = append(cleanURLs, raw)
	}

	return EffectiveConfig{
		Path: absPath,

		ImagesDir:  absCleanFrom(absPath, orDefault(fc.ImagesDir, DefaultImagesDir)),
		Dataset:    absCleanFrom(absPath, orDefault(fc.Dataset, DefaultDataset)),
		OutDir:     absCleanFrom(absPath, orDefault(fc.OutDir, DefaultOutDir)),
		ReportPath: absCleanFrom(absPath, orDefault(fc.ReportPath, DefaultReportPath)),
		NamesPath:  absCleanFrom(absPath, orDefault(fc.NamesPath, DefaultNamesPath)),
		NamesTS:    pick(cli.TS, cli.TSSet, fc.NamesTS),
		Ext:        ext,

		Apply:             pick(cli.Apply, cli.ApplySet, fc.Apply),
		Concurrency:       concurrency,
		LegacyDoubleMatch: pick(cli.Legacy, cli.LegacySet, fc.LegacyDoubleMatch),
		VerifyImages:      fc.VerifyImages,
		Shortcodes:        fc.Shortcodes,

		ProxyURL:    proxyURL,
		DatasetURLs: cleanURLs,
		Refresh:     cli.Refresh,

		LogLevel: logLevel,
	}, nil
}

// pick：CLI 显式值 > config > false。
func pick(cliVal, cliSet bool, fileVal *bool) bool {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return false
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
