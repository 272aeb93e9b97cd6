package run

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

func TestNames_WritesStemsInScanOrder(t *testing.T) {
	root := setupRoot(t, defaultImages())
	eff := loadEff(t, root, false)
	eff.NamesTS = true

	rep, err := Names(context.Background(), eff, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if rep.Names != 3 || len(rep.Outputs) != 2 {
		t.Fatalf("names 报告不符合预期：%+v", rep)
	}
	for _, o := range rep.Outputs {
		if o.Status != domain.FileStatusWritten {
			t.Fatalf("输出应写入成功：%+v", o)
		}
	}

	b, err := os.ReadFile(filepath.Join(root, "emojiNames.json"))
	if err != nil {
		t.Fatalf("读取 emojiNames.json 失败：%v", err)
	}
	want := `["Grinning Face","Handshake Light Skin Tone Dark Skin Tone","mystery"]`
	if string(b) != want {
		t.Fatalf("emojiNames.json 不符合预期：%s", b)
	}
	if _, err := os.Stat(filepath.Join(root, "emojiNames.ts")); err != nil {
		t.Fatalf("期望生成 emojiNames.ts：%v", err)
	}
}

func TestNames_MissingImagesDir(t *testing.T) {
	root := t.TempDir()
	if _, err := Names(context.Background(), loadEff(t, root, false), nil); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}
