// Package slug 把任意展示名归一化为文件名安全的 slug。
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks 把带重音的字符分解为“基础字母 + 组合符号”，再去掉组合符号。
// transform.Chain 不是并发安全的，所以每次调用新建。
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
}

// Normalize 把展示名转换为 slug：
//
//  1. NFD 分解并去掉组合符号（é -> e）
//  2. '-' 与空白视为分隔；',' 直接删除
//  3. 其余非单词字符（单词字符仅指 ASCII 字母/数字/下划线）全部删除
//  4. 转小写；每段连续分隔折叠为一个 '-'
//
// 总是返回结果（退化输入可能得到空串），且对自身输出幂等。
// 首尾的分隔同样会变成 '-'，不做额外裁剪。
func Normalize(s string) string {
	decomposed, _, err := transform.String(stripMarks(), s)
	if err != nil {
		// 非法 UTF-8 等极端输入：退化为原串，后续逐字符过滤仍然成立。
		decomposed = s
	}

	var b strings.Builder
	b.Grow(len(decomposed))

	pendingSep := false
	for _, r := range decomposed {
		switch {
		case r == '-' || isSpace(r):
			pendingSep = true
		case isWord(r):
			if pendingSep {
				b.WriteByte('-')
				pendingSep = false
			}
			b.WriteRune(toLowerASCII(r))
		default:
			// ',' 与其它标点/符号/非 ASCII 字符：删除，但不打断分隔段。
		}
	}
	if pendingSep {
		b.WriteByte('-')
	}
	return b.String()
}

// isSpace 的空白集合与 ECMAScript 正则 \s 相同：比 unicode.IsSpace 多 U+FEFF，少 U+0085。
func isSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

func isWord(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
