package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/John-Robertt/emojiprep/internal/infra/fsx"
)

// Store 提供 <path>/cache/ 下的页面缓存读写（数据集导入用）。
//
// 约束：
// - ReadOnly=true：只允许读
// - 文件名由 URL 派生（UUIDv5），同一 URL 永远落在同一位置
type Store struct {
	Root     string // <path>（数据根目录）
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// PagePath 返回某个 URL 的 HTML 缓存绝对路径。
func (s Store) PagePath(pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", fmt.Errorf("url 不能为空")
	}
	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte(pageURL)).String()
	return filepath.Join(s.Root, "cache", "pages", key+".html"), nil
}

// ReadPage 读取缓存；不存在时返回 ok=false 且 err=nil。
func (s Store) ReadPage(pageURL string) ([]byte, bool, error) {
	path, err := s.PagePath(pageURL)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WritePage(pageURL string, html []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	path, err := s.PagePath(pageURL)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), html)
}
