package echo

import (
	"context"
	"testing"

	"github.com/rhuss/procunit/pkg/engine"
)

func TestEchoProcess(t *testing.T) {
	e := New(nil, nil)
	got, err := e.Process(context.Background(), "zażółć gęślą jaźń", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if string(got) != "zażółć gęślą jaźń" {
		t.Errorf("Process() = %q", got)
	}
}

func TestEchoLanguageFromSettings(t *testing.T) {
	e := New(engine.MapSettings{engine.SettingLanguage: "pl-PL"}, nil)
	langs, _ := e.ListLanguages(context.Background())
	if len(langs) != 1 || langs[0] != "pl-PL" {
		t.Errorf("ListLanguages() = %v, want [pl-PL]", langs)
	}
	res, _ := e.ListResources(context.Background())
	if len(res) != 1 || res[0].Language() != "pl-PL" {
		t.Errorf("ListResources() = %+v", res)
	}
}
