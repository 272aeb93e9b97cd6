package run

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/John-Robertt/emojiprep/internal/config"
	"github.com/John-Robertt/emojiprep/internal/domain"
)

const testDataset = `{"emojis":[
  {"name":"Grinning Face","emoji":"😀","category":"Smileys & Emotion"},
  {"name":"Handshake: Light Skin Tone,Dark Skin Tone","emoji":"🫱🏻‍🫲🏿","category":"People & Body"},
  {"name":"Handshake: Light Skin Tone,Medium Skin Tone","emoji":"🫱🏻‍🫲🏽","category":"People & Body"}
]}`

// setupRoot 构造 <root>/72x72 + <root>/emojis.json，返回 root。
func setupRoot(t *testing.T, images map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "72x72")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	for name, b := range images {
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			t.Fatalf("写入图片失败：%v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "emojis.json"), []byte(testDataset), 0o644); err != nil {
		t.Fatalf("写入数据集失败：%v", err)
	}
	return root
}

func defaultImages() map[string][]byte {
	return map[string][]byte{
		"Grinning Face.png": []byte("grin-bytes"),
		"Handshake Light Skin Tone Dark Skin Tone.png": []byte("shake-bytes"),
		"mystery.png": []byte("???"),
		"notes.txt":   []byte("ignored"),
	}
}

func loadEff(t *testing.T, root string, apply bool) config.EffectiveConfig {
	t.Helper()
	eff, err := config.LoadEffective(root, config.CLIArgs{Path: root, Apply: apply, ApplySet: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	return eff
}

func TestExecute_DryRun_NoWrites(t *testing.T) {
	root := setupRoot(t, defaultImages())

	rr := Execute(context.Background(), loadEff(t, root, false), nil)

	if !rr.DryRun {
		t.Fatalf("期望 dry_run=true")
	}
	if _, err := uuid.Parse(rr.RunID); err != nil {
		t.Fatalf("run_id 不是合法 UUID：%q", rr.RunID)
	}
	for _, p := range []string{"emoji", "emoji.json", "emoji.txt", "emoji.not.txt"} {
		if _, err := os.Stat(filepath.Join(root, p)); !os.IsNotExist(err) {
			t.Fatalf("dry-run 不应创建 %s，但 Stat err=%v", p, err)
		}
	}

	want := domain.ReportSummary{Images: 3, Matched: 2, Unmatched: 1}
	if rr.Summary != want {
		t.Fatalf("summary 不符合预期：got=%+v want=%+v", rr.Summary, want)
	}
	if len(rr.Outputs) != 3 || rr.Outputs[0].Status != domain.FileStatusPlanned {
		t.Fatalf("dry-run outputs 应为 3 个 planned：%+v", rr.Outputs)
	}

	// items 按 name 排序：Grinning Face < Handshake ... < mystery
	if len(rr.Items) != 3 {
		t.Fatalf("期望 3 个 item，实际 %d", len(rr.Items))
	}
	grin, shake, mystery := rr.Items[0], rr.Items[1], rr.Items[2]
	if grin.Pass != domain.PassDirect || grin.Filename != "grinning-face" || grin.Alt != "😀" {
		t.Fatalf("Grinning Face 匹配结果不符合预期：%+v", grin)
	}
	if shake.Pass != domain.PassModifier || shake.Filename != "handshake-light-skin-tone-dark-skin-tone" {
		t.Fatalf("Handshake 应走修饰符匹配：%+v", shake)
	}
	if len(grin.Files) != 1 || grin.Files[0].Status != domain.FileStatusPlanned ||
		grin.Files[0].Dst != filepath.Join(root, "emoji", "grinning-face.png") {
		t.Fatalf("planned 文件不符合预期：%+v", grin.Files)
	}
	if mystery.Status != domain.StatusUnmatched || mystery.ErrorCode != domain.ErrCodeUnmatchedName {
		t.Fatalf("mystery 应为 unmatched：%+v", mystery)
	}
}

func TestExecute_Apply_WritesArtifactsAndCopies(t *testing.T) {
	root := setupRoot(t, defaultImages())

	rr := Execute(context.Background(), loadEff(t, root, true), nil)

	if rr.DryRun {
		t.Fatalf("期望 dry_run=false")
	}
	if rr.Summary.Failed != 0 || rr.Summary.Matched != 2 {
		t.Fatalf("summary 不符合预期：%+v items=%+v", rr.Summary, rr.Items)
	}
	for _, o := range rr.Outputs {
		if o.Status != domain.FileStatusWritten {
			t.Fatalf("报告文件应写入成功：%+v", o)
		}
	}

	got, err := os.ReadFile(filepath.Join(root, "emoji", "grinning-face.png"))
	if err != nil {
		t.Fatalf("读取复制结果失败：%v", err)
	}
	if string(got) != "grin-bytes" {
		t.Fatalf("复制内容不一致：%q", string(got))
	}
	if _, err := os.Stat(filepath.Join(root, "emoji", "handshake-light-skin-tone-dark-skin-tone.png")); err != nil {
		t.Fatalf("期望修饰符匹配的图片被复制：%v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "emoji", "mystery.png")); !os.IsNotExist(err) {
		t.Fatalf("未匹配的图片不应复制，Stat err=%v", err)
	}

	mapping, err := os.ReadFile(filepath.Join(root, "emoji.txt"))
	if err != nil {
		t.Fatalf("读取 mapping 失败：%v", err)
	}
	wantMapping := "Grinning Face;grinning-face;😀\n" +
		"Handshake Light Skin Tone Dark Skin Tone;handshake-light-skin-tone-dark-skin-tone;🫱🏻‍🫲🏿"
	if string(mapping) != wantMapping {
		t.Fatalf("mapping 不符合预期：\n%s", mapping)
	}

	notTxt, err := os.ReadFile(filepath.Join(root, "emoji.not.txt"))
	if err != nil {
		t.Fatalf("读取 unmatched 失败：%v", err)
	}
	if string(notTxt) != "mystery" {
		t.Fatalf("unmatched 不符合预期：%q", string(notTxt))
	}

	b, err := os.ReadFile(filepath.Join(root, "emoji.json"))
	if err != nil {
		t.Fatalf("读取 metadata 失败：%v", err)
	}
	var meta []domain.MatchResult
	if err := json.Unmarshal(b, &meta); err != nil {
		t.Fatalf("metadata 不是合法 JSON：%v", err)
	}
	if len(meta) != 2 || meta[1].Source.Name != "Handshake: Light Skin Tone,Dark Skin Tone" {
		t.Fatalf("metadata 不符合预期：%+v", meta)
	}
}

func TestExecute_Apply_IsRepeatable(t *testing.T) {
	root := setupRoot(t, defaultImages())
	eff := loadEff(t, root, true)

	_ = Execute(context.Background(), eff, nil)
	first, err := os.ReadFile(filepath.Join(root, "emoji.json"))
	if err != nil {
		t.Fatalf("读取 metadata 失败：%v", err)
	}
	rr := Execute(context.Background(), eff, nil)
	second, err := os.ReadFile(filepath.Join(root, "emoji.json"))
	if err != nil {
		t.Fatalf("读取 metadata 失败：%v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("两次运行的 metadata 应一致")
	}
	if rr.Summary.Failed != 0 {
		t.Fatalf("重复运行不应失败：%+v", rr.Summary)
	}
}

func TestExecute_VerifyImagesFailsGarbage(t *testing.T) {
	root := setupRoot(t, defaultImages())
	eff := loadEff(t, root, true)
	eff.VerifyImages = true

	rr := Execute(context.Background(), eff, nil)

	if rr.Summary.Failed != 2 {
		t.Fatalf("两张伪造图片都应校验失败：%+v", rr.Summary)
	}
	for _, it := range rr.Items {
		if it.Status == domain.StatusFailed && it.ErrorCode != domain.ErrCodeImageInvalid {
			t.Fatalf("期望 image_invalid，实际 %+v", it)
		}
	}
	// 复制失败不影响报告文件。
	if _, err := os.Stat(filepath.Join(root, "emoji.json")); err != nil {
		t.Fatalf("报告文件应写入：%v", err)
	}
}

func TestExecute_CollisionsCounted(t *testing.T) {
	root := setupRoot(t, map[string][]byte{
		"Grinning Face.png":  []byte("a"),
		"grinning  face.png": []byte("b"),
	})

	rr := Execute(context.Background(), loadEff(t, root, false), nil)
	if rr.Summary.Collisions != 1 || rr.Summary.Matched != 2 {
		t.Fatalf("期望 1 个冲突且两条都匹配：%+v", rr.Summary)
	}
}

func TestExecute_LegacyDoubleMatch(t *testing.T) {
	root := setupRoot(t, defaultImages())
	eff := loadEff(t, root, false)
	eff.LegacyDoubleMatch = true

	rr := Execute(context.Background(), eff, nil)
	if rr.Summary.Matched != 2 || rr.Summary.Unmatched != 1 {
		t.Fatalf("summary 不符合预期：%+v", rr.Summary)
	}
}

func TestExecute_DatasetInvalid(t *testing.T) {
	root := setupRoot(t, defaultImages())
	if err := os.WriteFile(filepath.Join(root, "emojis.json"), []byte(`{"emojis":[{"name":""}]}`), 0o644); err != nil {
		t.Fatalf("写入数据集失败：%v", err)
	}

	rr := Execute(context.Background(), loadEff(t, root, true), nil)
	assertSingleSynthetic(t, rr, domain.ErrCodeDatasetInvalid)
	if _, err := os.Stat(filepath.Join(root, "emoji.json")); !os.IsNotExist(err) {
		t.Fatalf("数据集无效时不应写任何输出，Stat err=%v", err)
	}
}

func TestExecute_MissingImagesDir(t *testing.T) {
	root := t.TempDir()
	rr := Execute(context.Background(), loadEff(t, root, true), nil)
	assertSingleSynthetic(t, rr, domain.ErrCodeIOFailed)
	if !strings.Contains(rr.Items[0].ErrorMsg, "扫描失败") {
		t.Fatalf("error_msg 应说明扫描失败：%q", rr.Items[0].ErrorMsg)
	}
}

func assertSingleSynthetic(t *testing.T, rr domain.RunReport, code string) {
	t.Helper()
	if len(rr.Items) != 1 {
		t.Fatalf("期望 1 个合成条目，实际 %d：%+v", len(rr.Items), rr.Items)
	}
	it := rr.Items[0]
	if it.Name != "" || it.Status != domain.StatusFailed || it.ErrorCode != code {
		t.Fatalf("合成条目不符合预期：%+v", it)
	}
	if rr.Summary.Failed != 1 || len(rr.Outputs) != 0 {
		t.Fatalf("summary/outputs 不符合预期：%+v %+v", rr.Summary, rr.Outputs)
	}
}
