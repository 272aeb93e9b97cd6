// Package modifier 拆分带修饰符的 emoji 复合名（例如 "Thumbs Up: Light Skin Tone"）。
package modifier

import (
	"strings"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

// Parse 把 "Base: mod1, mod2" 拆为基础名与按输入顺序排列的修饰符。
//
// 规则：
// - 只按第一个 ':' 切分；没有 ':' 返回 ok=false
// - 之后的 ':' 留在修饰符里（"a: b: c" 的修饰符为 "b: c"，复合名归一化为 a-b-c），不会被截断
// - ':' 右侧按 ',' 切分并逐个 trim，空 token 丢弃
// - 修饰符列表为空（例如结尾是悬空的 ':'）同样返回 ok=false
//
// 注意：ok=false 同时表示“没有冒号”和“冒号后为空”，调用方无法区分两者。
func Parse(s string) (domain.ParsedName, bool) {
	base, rest, found := strings.Cut(s, ":")
	if !found {
		return domain.ParsedName{}, false
	}

	var mods []string
	for _, tok := range strings.Split(rest, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		mods = append(mods, tok)
	}
	if len(mods) == 0 {
		return domain.ParsedName{}, false
	}

	return domain.ParsedName{
		Base:      strings.TrimSpace(base),
		Modifiers: mods,
	}, true
}
