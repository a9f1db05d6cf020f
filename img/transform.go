package img

import (
	"fmt"
	"image"
	"math/rand"
	"runtime"
	"sync"

	"github.com/nfnt/resize"
)

// Types of image transformations
type TransType int

const NoTrans TransType = 0

const (
	RandomCrop TransType = 1 << iota
	HorizFlip
	Normalise
)

// Distortions applied to training images. Evaluation uses a plain
// centre crop.
var TrainTrans = RandomCrop | HorizFlip

func (t TransType) String() string {
	if t == NoTrans {
		return "None"
	}
	s := ""
	for key, name := range map[TransType]string{RandomCrop: "RandomCrop", HorizFlip: "HorizFlip", Normalise: "Normalise"} {
		if t&key != 0 {
			if s != "" {
				s += " "
			}
			s += name
		}
	}
	return s
}

// Transformer scales, crops and optionally distorts and normalises images
// to a fixed square network input. Transform is safe for concurrent use.
type Transformer struct {
	Scale int // shorter side after rescaling
	Crop  int // output width and height
	Trans TransType
	Mean  []float32
	Std   []float32
	mu    sync.Mutex
	rng   *rand.Rand
}

// Create a new transformer with the given rescale and crop geometry.
func NewTransformer(scale, crop int, trans TransType, rng *rand.Rand) *Transformer {
	return &Transformer{Scale: scale, Crop: crop, Trans: trans, rng: rng}
}

// SetNorm sets the per channel mean and stddev used when the Normalise
// transform is enabled.
func (t *Transformer) SetNorm(mean, std []float32) *Transformer {
	t.Mean, t.Std = mean, std
	return t
}

// Transform produces one network input from a source image.
func (t *Transformer) Transform(src image.Image) (*RGBImage, error) {
	m := scaleShort(src, t.Scale)
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	if w < t.Crop || h < t.Crop {
		return nil, fmt.Errorf("img: %dx%d too small for %d crop", w, h, t.Crop)
	}
	x0, y0 := (w-t.Crop)/2, (h-t.Crop)/2
	flip := false
	if t.Trans&(RandomCrop|HorizFlip) != 0 {
		t.mu.Lock()
		if t.Trans&RandomCrop != 0 {
			x0, y0 = t.rng.Intn(w-t.Crop+1), t.rng.Intn(h-t.Crop+1)
		}
		flip = t.Trans&HorizFlip != 0 && t.rng.Float64() > 0.5
		t.mu.Unlock()
	}
	dst := cropImage(m, x0, y0, t.Crop, flip)
	if t.Trans&Normalise != 0 {
		if err := t.normalise(dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// TransformBatch transforms a batch of images in parallel.
func (t *Transformer) TransformBatch(srcs []image.Image) ([]*RGBImage, error) {
	dst := make([]*RGBImage, len(srcs))
	errs := make([]error, len(srcs))
	var wg sync.WaitGroup
	queue := make(chan int, len(srcs))
	for i := range srcs {
		queue <- i
	}
	close(queue)
	for thread := 0; thread < runtime.GOMAXPROCS(0); thread++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				dst[i], errs[i] = t.Transform(srcs[i])
			}
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (t *Transformer) normalise(m *RGBImage) error {
	if len(t.Mean) != 3 || len(t.Std) != 3 {
		return fmt.Errorf("img: normalisation needs mean and stddev for 3 channels")
	}
	for ch := 0; ch < 3; ch++ {
		pix := m.Pixels(ch)
		for i, val := range pix {
			pix[i] = (val - t.Mean[ch]) / t.Std[ch]
		}
	}
	return nil
}

// TenCrop produces the four corner crops and the centre crop of the scaled
// image together with their mirror images, in a fixed order.
func (t *Transformer) TenCrop(src image.Image) ([]*RGBImage, error) {
	m := scaleShort(src, t.Scale)
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	if w < t.Crop || h < t.Crop {
		return nil, fmt.Errorf("img: %dx%d too small for %d crop", w, h, t.Crop)
	}
	offsets := [][2]int{
		{0, 0}, {w - t.Crop, 0}, {0, h - t.Crop}, {w - t.Crop, h - t.Crop},
		{(w - t.Crop) / 2, (h - t.Crop) / 2},
	}
	crops := make([]*RGBImage, 0, 10)
	for _, off := range offsets {
		for _, flip := range []bool{false, true} {
			dst := cropImage(m, off[0], off[1], t.Crop, flip)
			if t.Trans&Normalise != 0 {
				if err := t.normalise(dst); err != nil {
					return nil, err
				}
			}
			crops = append(crops, dst)
		}
	}
	return crops, nil
}

// scale so that the shorter side matches size, preserving aspect ratio
func scaleShort(src image.Image, size int) *RGBImage {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == size && h == size {
		return FromImage(src)
	}
	if w < h {
		h = h * size / w
		w = size
	} else {
		w = w * size / h
		h = size
	}
	return FromImage(resize.Resize(uint(w), uint(h), src, resize.Bilinear))
}

func cropImage(src *RGBImage, x0, y0, size int, flip bool) *RGBImage {
	dst := NewRGB(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			sx := x0 + x
			if flip {
				sx = x0 + size - x - 1
			}
			dst.Set(x, y, src.RGBAt(sx, y0+y))
		}
	}
	return dst
}
