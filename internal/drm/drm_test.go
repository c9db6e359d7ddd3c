package drm

import (
	"testing"

	"dpms/internal/dpmserr"
)

func TestSelectCRTCPrefersBoundCrtc(t *testing.T) {
	got, err := selectCRTC(42, 0, []uint32{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestSelectCRTCFallsBackToPossibleMask(t *testing.T) {
	tests := []struct {
		name    string
		mask    uint32
		crtcIDs []uint32
		want    uint32
	}{
		{"first bit", 0b001, []uint32{10, 20, 30}, 10},
		{"second bit only", 0b010, []uint32{10, 20, 30}, 20},
		{"third bit only", 0b100, []uint32{10, 20, 30}, 30},
		{"multiple bits picks lowest index", 0b110, []uint32{10, 20, 30}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectCRTC(0, tt.mask, tt.crtcIDs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSelectCRTCNoPossibleCrtcsFails(t *testing.T) {
	_, err := selectCRTC(0, 0, []uint32{10, 20})
	if !dpmserr.Is(err, dpmserr.DrmError) {
		t.Fatalf("expected DrmError, got %v", err)
	}
}

func TestSelectActivePropertyFindsByName(t *testing.T) {
	propIDs := []uint32{5, 6, 7}
	names := map[uint32]string{5: "MODE_ID", 6: "ACTIVE", 7: "OUT_FENCE_PTR"}

	got, err := selectActiveProperty(propIDs, names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 6 {
		t.Errorf("got %d, want 6", got)
	}
}

func TestSelectActivePropertyMissingFails(t *testing.T) {
	propIDs := []uint32{5, 7}
	names := map[uint32]string{5: "MODE_ID", 7: "OUT_FENCE_PTR"}

	_, err := selectActiveProperty(propIDs, names)
	if !dpmserr.Is(err, dpmserr.DrmError) {
		t.Fatalf("expected DrmError, got %v", err)
	}
}

func TestConnectorNameMatchesKernelConvention(t *testing.T) {
	tests := []struct {
		name string
		info drmModeGetConnector
		want string
	}{
		{"hdmi-a first", drmModeGetConnector{ConnectorType: 11, ConnectorTypeID: 1}, "HDMI-A-1"},
		{"edp first", drmModeGetConnector{ConnectorType: 14, ConnectorTypeID: 1}, "eDP-1"},
		{"displayport second", drmModeGetConnector{ConnectorType: 10, ConnectorTypeID: 2}, "DP-2"},
		{"unknown type code falls back", drmModeGetConnector{ConnectorType: 255, ConnectorTypeID: 1}, "Unknown-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connectorName(tt.info); got != tt.want {
				t.Errorf("connectorName() = %q, want %q", got, tt.want)
			}
		})
	}
}
