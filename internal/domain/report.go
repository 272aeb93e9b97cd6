package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusMatched   = "matched"
	StatusUnmatched = "unmatched"
	StatusFailed    = "failed"
)

const (
	FileStatusPlanned = "planned"
	FileStatusWritten = "written"
	FileStatusFailed  = "failed"
)

const (
	ErrCodeUnmatchedName     = "unmatched_name"
	ErrCodeDatasetInvalid    = "dataset_invalid"
	ErrCodeImageInvalid      = "image_invalid"
	ErrCodeTargetConflict    = "target_conflict"
	ErrCodeIOFailed          = "io_failed"
	ErrCodeCopyFailed        = "copy_failed"
	ErrCodeWriteFailed       = "write_failed"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	RunID  string `json:"run_id"`
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
	// Outputs 是三个报告文件（metadata/mapping/unmatched）的写入结果。
	Outputs []FileResult `json:"outputs"`
}

type ReportSummary struct {
	Images     int `json:"images"`
	Matched    int `json:"matched"`
	Unmatched  int `json:"unmatched"`
	Failed     int `json:"failed"`
	Collisions int `json:"collisions"`
}

// ItemResult 是单个图片文件（或合成错误条目）的处理结果。
type ItemResult struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Alt      string `json:"alt"`
	Pass     string `json:"pass"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Files []FileResult `json:"files"`
}

type FileResult struct {
	Src    string `json:"src"`
	Dst    string `json:"dst"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 name 字典序；name=="" 的合成条目排在最后
// 3) summary 由 items 与 outputs 计算得出（images 按不同 name 计数；Collisions 由上层填写，这里保留）
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Items == nil {
		r.Items = []ItemResult{}
	}
	if r.Outputs == nil {
		r.Outputs = []FileResult{}
	}

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Name
		b := r.Items[j].Name
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	s := ReportSummary{Collisions: r.Summary.Collisions}
	// 同名条目（legacy 双重匹配、仅扩展名大小写不同的文件）只算一张图片。
	names := make(map[string]struct{}, len(r.Items))
	for _, it := range r.Items {
		if it.Name != "" {
			names[it.Name] = struct{}{}
		}
		// 复制失败的条目仍然算作已匹配（status=failed，但 filename 非空）。
		if it.Filename != "" {
			s.Matched++
		}
		switch it.Status {
		case StatusUnmatched:
			s.Unmatched++
		case StatusFailed:
			s.Failed++
		}
	}
	s.Images = len(names)
	for _, o := range r.Outputs {
		if o.Status == FileStatusFailed {
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
