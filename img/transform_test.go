package img

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

// 4x4 test image with a distinct red value per pixel
func testImage() *RGBImage {
	m := NewRGB(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, RGB{R: float32(x+y*4) / 16})
		}
	}
	return m
}

func TestFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 1, color.RGBA{B: 255, A: 255})
	m := FromImage(src)
	if c := m.RGBAt(0, 0); c.R < 0.99 || c.G > 0.01 {
		t.Errorf("bad pixel at 0,0: %+v", c)
	}
	if c := m.RGBAt(1, 1); c.B < 0.99 {
		t.Errorf("bad pixel at 1,1: %+v", c)
	}
	if len(m.Pixels(0)) != 4 || len(m.Vector()) != 12 {
		t.Error("bad plane sizes")
	}
}

func TestCenterCrop(t *testing.T) {
	trans := NewTransformer(4, 2, NoTrans, nil)
	dst, err := trans.Transform(testImage())
	if err != nil {
		t.Fatal(err)
	}
	if dst.Width != 2 || dst.Height != 2 {
		t.Fatalf("bad crop size %dx%d", dst.Width, dst.Height)
	}
	// centre crop of a 4x4 starts at 1,1
	if got, want := dst.RGBAt(0, 0).R, float32(1+1*4)/16; got != want {
		t.Errorf("centre crop origin: got %v want %v", got, want)
	}
}

func TestFlip(t *testing.T) {
	src := testImage()
	dst := cropImage(src, 0, 0, 4, true)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if dst.RGBAt(x, y) != src.RGBAt(3-x, y) {
				t.Fatalf("flip mismatch at %d,%d", x, y)
			}
		}
	}
}

func TestNormalise(t *testing.T) {
	trans := NewTransformer(4, 4, Normalise, nil)
	trans.SetNorm([]float32{0.5, 0, 0}, []float32{2, 1, 1})
	m := NewRGB(4, 4)
	for i := range m.Pixels(0) {
		m.Pixels(0)[i] = 1
	}
	dst, err := trans.Transform(m)
	if err != nil {
		t.Fatal(err)
	}
	if got := dst.Pixels(0)[0]; got != 0.25 {
		t.Errorf("normalise: got %v want 0.25", got)
	}
}

func TestNormaliseMissingStats(t *testing.T) {
	trans := NewTransformer(4, 4, Normalise, nil)
	if _, err := trans.Transform(NewRGB(4, 4)); err == nil {
		t.Fatal("expected error for missing normalisation stats")
	}
}

func TestTenCrop(t *testing.T) {
	trans := NewTransformer(4, 2, NoTrans, nil)
	crops, err := trans.TenCrop(testImage())
	if err != nil {
		t.Fatal(err)
	}
	if len(crops) != 10 {
		t.Fatalf("expected 10 crops, got %d", len(crops))
	}
	for i, c := range crops {
		if c.Width != 2 || c.Height != 2 {
			t.Errorf("crop %d has size %dx%d", i, c.Width, c.Height)
		}
	}
	// crop 1 is the mirror of crop 0
	if crops[1].RGBAt(0, 0) != crops[0].RGBAt(1, 0) {
		t.Error("second crop should mirror the first")
	}
}

func TestTransformBatch(t *testing.T) {
	trans := NewTransformer(4, 2, TrainTrans, rand.New(rand.NewSource(42)))
	srcs := make([]image.Image, 8)
	for i := range srcs {
		srcs[i] = testImage()
	}
	dst, err := trans.TransformBatch(srcs)
	if err != nil {
		t.Fatal(err)
	}
	for i, m := range dst {
		if m == nil || m.Width != 2 {
			t.Fatalf("batch entry %d not transformed", i)
		}
	}
}

func TestScaleShort(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	m := scaleShort(src, 2)
	if m.Width != 4 || m.Height != 2 {
		t.Errorf("scaled to %dx%d, want 4x2", m.Width, m.Height)
	}
}
