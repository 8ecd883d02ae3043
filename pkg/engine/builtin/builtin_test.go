package builtin

import (
	"reflect"
	"testing"

	"github.com/rhuss/procunit/pkg/engine"
)

func TestRegistryNames(t *testing.T) {
	got := Registry().Names()
	want := []string{"default", "echo", "remote"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistryBuildsEngines(t *testing.T) {
	r := Registry()
	settings := engine.MapSettings{engine.SettingBackendURL: "http://localhost:9000"}
	for _, name := range r.Names() {
		e, err := r.New(name, settings, nil)
		if err != nil {
			t.Errorf("New(%q): %v", name, err)
			continue
		}
		if e.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, e.Name())
		}
		e.Close()
	}
}

func TestRemoteRequiresBackendURL(t *testing.T) {
	if _, err := Registry().New("remote", engine.MapSettings{}, nil); err == nil {
		t.Error("expected error without backend URL")
	}
}
