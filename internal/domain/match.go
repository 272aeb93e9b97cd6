package domain

const (
	PassDirect   = "direct"
	PassModifier = "modifier"
)

// MatchResult 是一个图片文件成功匹配到的元数据。
//
// JSON 字段名是前端组件消费的稳定契约（name/filename/alt/category/emojiData）。
// Filename 在结果集中并不保证唯一：两个不同的原始名归一化到同一个 slug 时，两条都会输出。
type MatchResult struct {
	Name      string      `json:"name"`
	Filename  string      `json:"filename"`
	Alt       string      `json:"alt"`
	Category  string      `json:"category"`
	Shortcode string      `json:"shortcode,omitempty"`
	Pass      string      `json:"pass"`
	Source    EmojiRecord `json:"emojiData"`
}
