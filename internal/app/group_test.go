package app

import (
	"reflect"
	"testing"

	"github.com/John-Robertt/emojiprep/internal/domain"
)

func TestGroupByFilename_DetectsCollisions(t *testing.T) {
	matched := []domain.MatchResult{
		{Name: "Ok Hand", Filename: "ok-hand"},
		{Name: "Zebra", Filename: "zebra"},
		{Name: "ok  hand", Filename: "ok-hand"},
		{Name: "Apple", Filename: "apple"},
		{Name: "APPLE", Filename: "apple"},
	}

	got := GroupByFilename(matched)
	want := []Collision{
		{Filename: "apple", Names: []string{"Apple", "APPLE"}},
		{Filename: "ok-hand", Names: []string{"Ok Hand", "ok  hand"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("冲突分组不符合预期：\ngot=%v\nwant=%v", got, want)
	}
}

func TestGroupByFilename_SameNameTwiceIsNotCollision(t *testing.T) {
	// legacy 双重匹配：同一图片出现两次。
	matched := []domain.MatchResult{
		{Name: "Thumbs Up", Filename: "thumbs-up", Pass: domain.PassDirect},
		{Name: "Thumbs Up", Filename: "thumbs-up", Pass: domain.PassModifier},
	}
	if got := GroupByFilename(matched); len(got) != 0 {
		t.Fatalf("不期望冲突：%v", got)
	}
}

func TestGroupByFilename_Empty(t *testing.T) {
	if got := GroupByFilename(nil); len(got) != 0 {
		t.Fatalf("不期望冲突：%v", got)
	}
}
