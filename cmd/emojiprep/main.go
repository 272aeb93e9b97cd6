package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/emojiprep/internal/app/run"
	"github.com/John-Robertt/emojiprep/internal/config"
	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/infra/fsx"
	"github.com/John-Robertt/emojiprep/internal/logx"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var code int
	switch args[0] {
	case "run":
		code = runCmd(ctx, args[1:])
	case "names":
		code = namesCmd(ctx, args[1:])
	case "import":
		code = importCmd(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		code = 2
	}
	if code != 0 {
		stop()
		os.Exit(code)
	}
}

func runCmd(ctx context.Context, args []string) int {
	if wantsHelp(args) {
		printRunUsage()
		return 0
	}
	ca, err := parseArgs(args, flagApply|flagLegacy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	cwdAbs, _ := filepath.Abs(cwd)

	eff, err := config.LoadEffective(cwd, ca.config())
	if err != nil {
		emitReport(reportForConfigError(cwdAbs, ca, err))
		return 1
	}
	log := newLogger(eff)

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := run.ExecuteWithObserver(ctx, eff, log, obs)

	// apply：RunReport 同时落盘到 <path>/cache/report.json；dry-run 禁止落盘。
	if eff.Apply {
		if err := writeReportFile(eff.Path, rr); err != nil {
			log.Error("写入 report.json 失败", "error", err)
			emitReport(rr)
			return 1
		}
	}

	emitReport(rr)
	if interactive {
		emitLocations(progressW, eff)
	}
	// 未匹配只是“缺数据”，不算失败。
	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

func namesCmd(ctx context.Context, args []string) int {
	if wantsHelp(args) {
		printNamesUsage()
		return 0
	}
	ca, err := parseArgs(args, flagTS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printNamesUsage()
		return 2
	}

	eff, code := loadForCommand(ca)
	if code != 0 {
		return code
	}

	rep, err := run.Names(ctx, eff, newLogger(eff))
	if err != nil {
		fmt.Fprintf(os.Stderr, "生成名字列表失败：%v\n", err)
		return 1
	}
	emitJSONOrSummary(rep, fmt.Sprintf("完成：names=%d outputs=%d", rep.Names, len(rep.Outputs)))
	for _, o := range rep.Outputs {
		if o.Status == domain.FileStatusFailed {
			return 1
		}
	}
	return 0
}

func importCmd(ctx context.Context, args []string) int {
	if wantsHelp(args) {
		printImportUsage()
		return 0
	}
	ca, err := parseArgs(args, flagApply|flagURL|flagRefresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printImportUsage()
		return 2
	}

	eff, code := loadForCommand(ca)
	if code != 0 {
		return code
	}

	started := time.Now()
	rep, err := run.Import(ctx, eff, newLogger(eff))
	if err != nil {
		fmt.Fprintf(os.Stderr, "导入失败：%v\n", err)
		return 1
	}
	mode := "dry-run"
	if eff.Apply {
		mode = "apply"
	}
	emitJSONOrSummary(rep, fmt.Sprintf("完成（%s）：records=%d categories=%d (%s)",
		mode, rep.Records, len(rep.Categories), formatShortDuration(time.Since(started))))
	return 0
}

// loadForCommand 供 names/import 使用：配置错误直接打印到 stderr。
func loadForCommand(ca cliArgs) (config.EffectiveConfig, int) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return config.EffectiveConfig{}, 1
	}
	eff, err := config.LoadEffective(cwd, ca.config())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return config.EffectiveConfig{}, 1
	}
	return eff, 0
}

func newLogger(eff config.EffectiveConfig) *slog.Logger {
	// LoadEffective 已校验过 log_level。
	lv, _ := logx.ParseLevel(eff.LogLevel)
	return logx.New(os.Stderr, lv)
}

type flagSet uint8

const (
	flagApply flagSet = 1 << iota
	flagLegacy
	flagTS
	flagURL
	flagRefresh
)

type cliArgs struct {
	Path string

	Apply    bool
	ApplySet bool

	Legacy    bool
	LegacySet bool

	TS    bool
	TSSet bool

	URLs    []string
	Refresh bool
}

func (a cliArgs) config() config.CLIArgs {
	return config.CLIArgs{
		Path:      a.Path,
		Apply:     a.Apply,
		ApplySet:  a.ApplySet,
		Legacy:    a.Legacy,
		LegacySet: a.LegacySet,
		TS:        a.TS,
		TSSet:     a.TSSet,
		URLs:      a.URLs,
		Refresh:   a.Refresh,
	}
}

// parseArgs 解析 [path] 与 allowed 中允许的参数。
// 布尔参数支持 --x 与 --x=true|false 两种写法。
func parseArgs(args []string, allowed flagSet) (cliArgs, error) {
	ca := cliArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		name, value, hasValue := strings.Cut(a, "=")
		switch {
		case name == "--apply" && allowed&flagApply != 0:
			v, err := boolFlag(name, value, hasValue)
			if err != nil {
				return cliArgs{}, err
			}
			ca.Apply, ca.ApplySet = v, true
		case name == "--legacy" && allowed&flagLegacy != 0:
			v, err := boolFlag(name, value, hasValue)
			if err != nil {
				return cliArgs{}, err
			}
			ca.Legacy, ca.LegacySet = v, true
		case name == "--ts" && allowed&flagTS != 0:
			v, err := boolFlag(name, value, hasValue)
			if err != nil {
				return cliArgs{}, err
			}
			ca.TS, ca.TSSet = v, true
		case name == "--refresh" && allowed&flagRefresh != 0:
			v, err := boolFlag(name, value, hasValue)
			if err != nil {
				return cliArgs{}, err
			}
			ca.Refresh = v
		case name == "--url" && allowed&flagURL != 0:
			if !hasValue {
				if i+1 >= len(args) {
					return cliArgs{}, errors.New("--url 需要一个值")
				}
				i++
				value = args[i]
			}
			if strings.TrimSpace(value) == "" {
				return cliArgs{}, errors.New("--url 不能为空")
			}
			ca.URLs = append(ca.URLs, value)
		case strings.HasPrefix(a, "-"):
			return cliArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ca.Path != "" {
				return cliArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ca.Path, a)
			}
			ca.Path = a
		}
	}
	return ca, nil
}

func boolFlag(name, value string, hasValue bool) (bool, error) {
	if !hasValue {
		return true, nil
	}
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%s 只能是 true 或 false，实际是 %q", name, value)
	}
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func wantsHelp(args []string) bool {
	for _, a := range args {
		if isHelp(a) {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  emojiprep run    [path] [--apply[=true|false]] [--legacy[=true|false]]
  emojiprep names  [path] [--ts[=true|false]]
  emojiprep import [path] [--url <chart url>]... [--apply[=true|false]] [--refresh]

命令：
  run     匹配图片与数据集，生成元数据与重命名副本（默认 dry-run）
  names   生成可用 emoji 名列表（emojiNames.json）
  import  从 unicode.org 生成数据集（默认 dry-run）

使用 "emojiprep <命令> --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  emojiprep run [path] [--apply[=true|false]] [--legacy[=true|false]]

参数：
  --apply     写出报告文件并复制图片（默认 dry-run）；支持 --apply=false 覆盖配置中的 apply=true
  --legacy    兼容旧行为：先输出全部直接匹配，再输出全部修饰符匹配（同一图片可能出现两次）
  -h, --help  显示帮助
`)
}

func printNamesUsage() {
	fmt.Fprint(os.Stdout, `用法：
  emojiprep names [path] [--ts[=true|false]]

参数：
  --ts        额外生成 TypeScript 模块（emojiNames + EmojiName 联合类型）
  -h, --help  显示帮助
`)
}

func printImportUsage() {
	fmt.Fprint(os.Stdout, `用法：
  emojiprep import [path] [--url <chart url>]... [--apply[=true|false]] [--refresh]

参数：
  --url       chart 页面地址，可重复；覆盖配置中的 dataset_urls（默认 unicode.org 两个页面）
  --apply     写出数据集（默认 dry-run，只抓取与解析）
  --refresh   忽略页面缓存，重新抓取
  -h, --help  显示帮助
`)
}

func summaryLine(rr domain.RunReport) string {
	return fmt.Sprintf("完成：images=%d matched=%d unmatched=%d failed=%d collisions=%d",
		rr.Summary.Images, rr.Summary.Matched, rr.Summary.Unmatched, rr.Summary.Failed, rr.Summary.Collisions,
	)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintln(os.Stdout, summaryLine(rr))
		for _, it := range rr.Items {
			if it.Status != domain.StatusFailed {
				continue
			}
			key := it.Name
			if key == "" {
				key = "<run>"
			}
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
		}
		if rr.Summary.Unmatched > 0 {
			fmt.Fprintf(os.Stderr, "未匹配 %d 个名称（详见 .not.txt 或 JSON 报告）\n", rr.Summary.Unmatched)
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(os.Stderr, summaryLine(rr))
}

// emitJSONOrSummary：stdout 非 TTY 时输出单个 JSON，否则输出一行摘要。
func emitJSONOrSummary(v any, summary string) {
	if isTTY(os.Stdout) {
		fmt.Fprintln(os.Stdout, summary)
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	fmt.Fprintln(os.Stderr, summary)
}

func reportForConfigError(cwdAbs string, ca cliArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Path:       cwdAbs,
		DryRun:     !(ca.ApplySet && ca.Apply),
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
			Files:     []domain.FileResult{},
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(root string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Join(root, "cache"), "report.json", b)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}

func emitLocations(w io.Writer, eff config.EffectiveConfig) {
	if w == nil {
		return
	}
	if eff.Apply {
		fmt.Fprintf(w, "report: %s\n", filepath.Join(eff.Path, "cache", "report.json"))
	}
	fmt.Fprintf(w, "metadata: %s\n", eff.ReportPath)
	fmt.Fprintf(w, "out: %s\n", eff.OutDir)
}
