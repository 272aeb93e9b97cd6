package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

// ScanImages 列出 dir 下（不递归）扩展名为 ext 的图片文件。
//
// 规则：
// - ext 比较不区分大小写（".PNG" 与 ".png" 等价）；Stem 去掉文件自身的扩展名
// - 子目录跳过；以 '.' 开头的文件照常参与（原子写的临时文件 .x.png.tmp-* 扩展名不匹配，自然被过滤）
// - 输出按文件名稳定排序
//
// 注意：扫描阶段只做 stat（DirEntry.Info），不读文件内容。
func ScanImages(dir, ext string) ([]domain.ImageAsset, error) {
	dir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return nil, err
	}
	want := NormalizeExt(ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]domain.ImageAsset, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		fileExt := filepath.Ext(name)
		if !strings.EqualFold(fileExt, want) {
			continue
		}
		stem := strings.TrimSuffix(name, fileExt)
		if stem == "" {
			continue
		}

		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, domain.ImageAsset{
			AbsPath:  filepath.Join(dir, name),
			FileName: name,
			Stem:     stem,
			Ext:      fileExt,
			Size:     info.Size(),
		})
	}

	// os.ReadDir 已按文件名排序；这里再显式排序一次，避免依赖实现细节。
	sort.Slice(files, func(i, j int) bool { return files[i].FileName < files[j].FileName })
	return files, nil
}

// NormalizeExt 把 "png" / "PNG" / ".png" 统一为 ".png"。
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Stems 提取原始文件名（去扩展名），保持输入顺序。
func Stems(files []domain.ImageAsset) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Stem)
	}
	return out
}
