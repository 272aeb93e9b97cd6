package domain

// EmojiRecord 是数据集中的一条 emoji 元数据（只读输入）。
//
// 不变量：Name 非空。Name 可能是带修饰符的复合名，例如 "Thumbs Up: Light Skin Tone"。
type EmojiRecord struct {
	Name     string `json:"name"`
	Glyph    string `json:"emoji"`
	Category string `json:"category"`
}

// Dataset 对应数据集 JSON 的顶层结构：{"emojis": [...]}。
type Dataset struct {
	Emojis []EmojiRecord `json:"emojis"`
}
