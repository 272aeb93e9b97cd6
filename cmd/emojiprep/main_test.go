package main

import (
	"reflect"
	"testing"
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		allowed flagSet
		want    cliArgs
	}{
		{"path only", []string{"site"}, flagApply, cliArgs{Path: "site"}},
		{"apply", []string{"--apply", "site"}, flagApply, cliArgs{Path: "site", Apply: true, ApplySet: true}},
		{"apply false", []string{"--apply=false"}, flagApply, cliArgs{Apply: false, ApplySet: true}},
		{"legacy", []string{"--legacy"}, flagApply | flagLegacy, cliArgs{Legacy: true, LegacySet: true}},
		{"ts", []string{"--ts=true", "p"}, flagTS, cliArgs{Path: "p", TS: true, TSSet: true}},
		{"urls", []string{"--url", "https://a/x.html", "--url=https://b/y.html", "--refresh"}, flagURL | flagRefresh,
			cliArgs{URLs: []string{"https://a/x.html", "https://b/y.html"}, Refresh: true}},
	}
	for _, tc := range cases {
		got, err := parseArgs(tc.args, tc.allowed)
		if err != nil {
			t.Fatalf("%s：不期望错误：%v", tc.name, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s：\n期望 %+v\n实际 %+v", tc.name, tc.want, got)
		}
	}
}

func TestParseArgs_Errors(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		allowed flagSet
	}{
		{"unknown flag", []string{"--provider=x"}, flagApply},
		{"flag not allowed here", []string{"--ts"}, flagApply},
		{"bad bool", []string{"--apply=yes"}, flagApply},
		{"duplicate path", []string{"a", "b"}, flagApply},
		{"url missing value", []string{"--url"}, flagURL},
		{"url empty", []string{"--url="}, flagURL},
	}
	for _, tc := range cases {
		if _, err := parseArgs(tc.args, tc.allowed); err == nil {
			t.Fatalf("%s：期望错误，但得到 nil", tc.name)
		}
	}
}

func TestCLIArgs_ConfigCarriesFlags(t *testing.T) {
	ca := cliArgs{Path: "p", Apply: true, ApplySet: true, URLs: []string{"https://a/x"}}
	c := ca.config()
	if c.Path != "p" || !c.Apply || !c.ApplySet || len(c.URLs) != 1 {
		t.Fatalf("config 参数不符合预期：%+v", c)
	}
}
