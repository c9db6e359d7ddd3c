package daemon

import (
	"testing"

	"dpms/internal/drm"
)

func TestSelectOutputsEmptyNamesMeansAll(t *testing.T) {
	outputs := []drm.Output{{Name: "eDP-1"}, {Name: "HDMI-A-1"}}
	got := selectOutputs(outputs, nil)
	if len(got) != 2 {
		t.Fatalf("got %d outputs, want 2", len(got))
	}
}

func TestSelectOutputsFiltersByName(t *testing.T) {
	outputs := []drm.Output{{Name: "eDP-1"}, {Name: "HDMI-A-1"}, {Name: "DP-1"}}
	got := selectOutputs(outputs, []string{"HDMI-A-1", "DP-1"})
	if len(got) != 2 {
		t.Fatalf("got %d outputs, want 2", len(got))
	}
	for _, o := range got {
		if o.Name != "HDMI-A-1" && o.Name != "DP-1" {
			t.Errorf("unexpected output selected: %s", o.Name)
		}
	}
}

func TestSelectOutputsUnmatchedNameYieldsNone(t *testing.T) {
	outputs := []drm.Output{{Name: "eDP-1"}}
	got := selectOutputs(outputs, []string{"DP-99"})
	if len(got) != 0 {
		t.Fatalf("got %d outputs, want 0", len(got))
	}
}
