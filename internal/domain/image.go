package domain

// ImageAsset 描述一次扫描得到的图片文件（只做 stat，不读内容）。
//
// 不变量：
// - AbsPath 必须是 clean + absolute
// - Stem 是去掉扩展名后的原始文件名，也是匹配的候选名
type ImageAsset struct {
	AbsPath  string
	FileName string // "Grinning Face.png"
	Stem     string // "Grinning Face"
	Ext      string // 原样保留大小写，例如 ".png"
	Size     int64
}
