package domain

import "strings"

// ParsedName 是 "Base: mod1, mod2" 形式名称的拆分结果。
//
// 只有 Modifiers 非空时才会构造出 ParsedName；"没有修饰符" 由解析函数的 ok=false 表达，
// 不用空切片表达。
type ParsedName struct {
	Base      string
	Modifiers []string
}

// Compound 把基础名与修饰符用空格拼回一个可归一化的名称。
func (p ParsedName) Compound() string {
	return p.Base + " " + strings.Join(p.Modifiers, " ")
}
