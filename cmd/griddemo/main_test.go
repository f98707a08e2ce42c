package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/gogpu/gridding"
)

func TestParseCV(t *testing.T) {
	tests := []struct {
		in      string
		want    gridding.CVMode
		wantErr bool
	}{
		{"none", gridding.CVNone, false},
		{"", gridding.CVNone, false},
		{"loo", gridding.LeaveOneOut, false},
		{"2fold", gridding.TwoFold, false},
		{"k-fold", gridding.KFold, false},
		{"bootstrap", 0, true},
	}
	for _, tt := range tests {
		got, err := parseCV(tt.in, 7)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCV(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got.Mode != tt.want {
			t.Errorf("parseCV(%q) = %v, want %v", tt.in, got.Mode, tt.want)
		}
	}
}

func TestLoadJob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	data := []byte("method: triangulation\npoints: 50\ncross_validation: loo\nquadrants: true\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().IntVarP(&flags.Points, "points", "n", flags.Points, "")
	if err := cmd.Flags().Set("points", "80"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cfgFile, flags = "", defaultJob() })
	cfgFile = path

	got, err := loadJob(cmd)
	if err != nil {
		t.Fatalf("loadJob() error = %v", err)
	}
	want := defaultJob()
	want.Method = "triangulation"
	want.Points = 80 // flag wins over the file
	want.CV = "loo"
	want.Quadrants = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loadJob() mismatch (-want +got):\n%s", diff)
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	a := synthetic(40, 3).Points()
	b := synthetic(40, 3).Points()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("synthetic() not reproducible (-a +b):\n%s", diff)
	}
	for _, p := range a {
		if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 100 {
			t.Fatalf("point %v outside [0, 100]²", p)
		}
	}
}

func TestRamp(t *testing.T) {
	lo, hi := ramp(0), ramp(1)
	if lo.B != 255 || lo.R != 0 {
		t.Errorf("ramp(0) = %v, want blue", lo)
	}
	if hi.R != 255 || hi.B != 0 {
		t.Errorf("ramp(1) = %v, want red", hi)
	}
	if ramp(-3) != lo || ramp(9) != hi {
		t.Error("ramp() should clamp to [0, 1]")
	}
}

func TestWritePreview(t *testing.T) {
	g, err := gridding.NewGrid(4, 2, 1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	g.SetValue(0, 0, 1)
	g.SetValue(3, 1, 5)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := writePreview(path, g, 8); err != nil {
		t.Fatalf("writePreview() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("preview size = %v, want 8 × 4", b.Size())
	}
}
