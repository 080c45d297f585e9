package platform

import (
	"context"
	"testing"
)

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		rosetta bool
		want    string
	}{
		{name: "amd64 native", raw: "amd64", want: ArchAMD64},
		{name: "x86_64 native", raw: "x86_64", want: ArchAMD64},
		{name: "arm64", raw: "arm64", want: ArchARM64},
		{name: "aarch64", raw: "aarch64", want: ArchARM64},
		{name: "aarch64 uppercase", raw: "AARCH64", want: ArchARM64},
		{name: "386 falls back to amd64", raw: "386", want: ArchAMD64},
		{name: "amd64 under rosetta", raw: "amd64", rosetta: true, want: ArchARM64},
		{name: "arm64 ignores rosetta flag", raw: "arm64", rosetta: true, want: ArchARM64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeArch(tt.raw, tt.rosetta); got != tt.want {
				t.Errorf("normalizeArch(%q, %v) = %q, want %q", tt.raw, tt.rosetta, got, tt.want)
			}
		})
	}
}

func TestDetectRosetta(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		arch      string
		probe     TranslationProbe
		wantArch  string
		wantProbe bool // whether the probe should have been consulted
	}{
		{
			name:      "darwin amd64 translated resolves to arm64",
			goos:      "darwin",
			arch:      "amd64",
			probe:     func(context.Context) bool { return true },
			wantArch:  ArchARM64,
			wantProbe: true,
		},
		{
			name:      "darwin amd64 native stays amd64",
			goos:      "darwin",
			arch:      "amd64",
			probe:     func(context.Context) bool { return false },
			wantArch:  ArchAMD64,
			wantProbe: true,
		},
		{
			name:     "darwin arm64 never probes",
			goos:     "darwin",
			arch:     "arm64",
			wantArch: ArchARM64,
		},
		{
			name:     "linux amd64 never probes",
			goos:     "linux",
			arch:     "amd64",
			wantArch: ArchAMD64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probed := false
			probe := func(ctx context.Context) bool {
				probed = true
				if tt.probe != nil {
					return tt.probe(ctx)
				}
				return false
			}

			detector := NewDetectorFor(tt.goos, tt.arch, probe)
			info, err := detector.Detect(context.Background())
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}

			if info.Arch != tt.wantArch {
				t.Errorf("Detect() arch = %q, want %q", info.Arch, tt.wantArch)
			}
			if probed != tt.wantProbe {
				t.Errorf("Detect() probed = %v, want %v", probed, tt.wantProbe)
			}
			if info.ArchRaw != tt.arch {
				t.Errorf("Detect() raw arch = %q, want %q", info.ArchRaw, tt.arch)
			}
		})
	}
}

func TestDetectCurrentHost(t *testing.T) {
	detector := NewDetector()
	info, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.OS == "" {
		t.Error("Detect() returned empty OS")
	}
	if info.Arch != ArchAMD64 && info.Arch != ArchARM64 {
		t.Errorf("Detect() arch = %q, want amd64 or arm64", info.Arch)
	}
}
