package eval

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path"
	"testing"
)

func testResult(t *testing.T, n int) *Result {
	t.Helper()
	dir := t.TempDir()
	r := &Result{Classes: []string{"cat", "dog"}}
	for i := 0; i < n; i++ {
		file := path.Join(dir, imgName(i))
		writePNG(t, file)
		r.Paths = append(r.Paths, file)
		score := float64(i) / float64(n)
		r.Pred = append(r.Pred, []float64{score, 1 - score})
		r.Labels = append(r.Labels, []float64{1, 0})
	}
	return r
}

func imgName(i int) string {
	return string(rune('a'+i)) + ".png"
}

func writePNG(t *testing.T, file string) {
	t.Helper()
	m := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			m.Set(x, y, color.RGBA{R: uint8(32 * x), G: uint8(32 * y), A: 255})
		}
	}
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, m); err != nil {
		t.Fatal(err)
	}
}

func TestTopBottom(t *testing.T) {
	r := testResult(t, 5)
	top, bottom := r.TopBottom(0, 2)
	if top[0] != 4 || top[1] != 3 {
		t.Errorf("bad top ranks %v", top)
	}
	if bottom[0] != 0 || bottom[1] != 1 {
		t.Errorf("bad bottom ranks %v", bottom)
	}
	// class 1 scores run the other way
	top, _ = r.TopBottom(1, 1)
	if top[0] != 0 {
		t.Errorf("bad top rank for class 1: %v", top)
	}
}

func TestTopBottomLargeK(t *testing.T) {
	r := testResult(t, 3)
	top, bottom := r.TopBottom(0, 10)
	if len(top) != 3 || len(bottom) != 3 {
		t.Errorf("k above sample count should return all samples, got %d and %d",
			len(top), len(bottom))
	}
}

func TestRandomClasses(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	picked := RandomClasses(rng, 20, 4)
	if len(picked) != 4 {
		t.Fatalf("picked %d classes, want 4", len(picked))
	}
	seen := map[int]bool{}
	for _, c := range picked {
		if c < 0 || c >= 20 {
			t.Errorf("class %d out of range", c)
		}
		if seen[c] {
			t.Errorf("class %d picked twice", c)
		}
		seen[c] = true
	}
	if got := RandomClasses(rng, 3, 10); len(got) != 3 {
		t.Errorf("cannot pick more classes than exist, got %d", len(got))
	}
}

func TestExportTopBottom(t *testing.T) {
	r := testResult(t, 4)
	out := t.TempDir()
	if err := ExportTopBottom(r, out, []int{0}, 2); err != nil {
		t.Fatal(err)
	}
	for _, file := range []string{
		path.Join(out, "top", "cat", "01_"+imgName(3)),
		path.Join(out, "top", "cat", "02_"+imgName(2)),
		path.Join(out, "bottom", "cat", "01_"+imgName(0)),
		path.Join(out, "bottom", "cat", "sheet.png"),
	} {
		if _, err := os.Stat(file); err != nil {
			t.Errorf("missing export %s", file)
		}
	}
	src, err := os.ReadFile(r.Paths[3])
	if err != nil {
		t.Fatal(err)
	}
	dst, err := os.ReadFile(path.Join(out, "top", "cat", "01_"+imgName(3)))
	if err != nil {
		t.Fatal(err)
	}
	if string(src) != string(dst) {
		t.Error("exported copy differs from the source image")
	}
}
