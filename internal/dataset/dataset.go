// Package dataset 读写 emoji 元数据集（{"emojis":[{name, emoji, category}]}）。
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/emojiprep/internal/domain"
	"github.com/John-Robertt/emojiprep/internal/infra/fsx"
)

// InvalidError 表示数据集可以读取，但内容不合法（JSON 损坏或记录缺少 name）。
// 上层把它映射为 error_code=dataset_invalid；其余错误视为 io_failed。
type InvalidError struct {
	Path  string
	Index int // -1 表示整体解析失败
	Err   error
}

func (e *InvalidError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("数据集 %q 第 %d 条记录无效：%v", e.Path, e.Index, e.Err)
	}
	return fmt.Sprintf("数据集 %q 无效：%v", e.Path, e.Err)
}

func (e *InvalidError) Unwrap() error { return e.Err }

// IsInvalid 判断 err 是否为数据集内容错误。
func IsInvalid(err error) bool {
	var e *InvalidError
	return errors.As(err, &e)
}

// Load 读取并校验数据集，返回记录（保持文件中的顺序，顺序决定匹配的 tie-break）。
func Load(path string) ([]domain.EmojiRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, b)
}

// Decode 解析数据集字节。path 只用于错误信息。
func Decode(path string, b []byte) ([]domain.EmojiRecord, error) {
	var ds domain.Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, &InvalidError{Path: path, Index: -1, Err: err}
	}
	if ds.Emojis == nil {
		return nil, &InvalidError{Path: path, Index: -1, Err: errors.New("缺少顶层字段 emojis")}
	}
	for i, r := range ds.Emojis {
		if strings.TrimSpace(r.Name) == "" {
			return nil, &InvalidError{Path: path, Index: i, Err: errors.New("name 不能为空")}
		}
	}
	return ds.Emojis, nil
}

// Write 把记录写为数据集 JSON（原子覆盖）。
func Write(path string, records []domain.EmojiRecord) error {
	if records == nil {
		records = []domain.EmojiRecord{}
	}
	b, err := json.MarshalIndent(domain.Dataset{Emojis: records}, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), b)
}
