package eval

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math/rand"
	"os"
	"path"
	"sort"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/voclab/voclass/img"
)

const thumbSize = 112

// Ranked returns the sample indices ordered by descending score for one
// class. Ties keep their original order.
func (r *Result) Ranked(class int) []int {
	order := make([]int, len(r.Pred))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return r.Pred[order[i]][class] > r.Pred[order[j]][class]
	})
	return order
}

// TopBottom returns the k highest and k lowest scoring samples for the
// class, both ordered from most to least extreme. If k exceeds the number
// of samples then every sample is returned on both sides.
func (r *Result) TopBottom(class, k int) (top, bottom []int) {
	order := r.Ranked(class)
	if k > len(order) {
		k = len(order)
	}
	top = order[:k]
	bottom = make([]int, k)
	for i := 0; i < k; i++ {
		bottom[i] = order[len(order)-1-i]
	}
	return top, bottom
}

// RandomClasses picks n distinct class indices for qualitative review.
func RandomClasses(rng *rand.Rand, classes, n int) []int {
	if n > classes {
		n = classes
	}
	perm := rng.Perm(classes)[:n]
	sort.Ints(perm)
	return perm
}

// ExportTopBottom copies the k most and least confident images for each
// given class under dir/top/<class> and dir/bottom/<class>. File names are
// prefixed with the rank so a directory listing shows them in score order.
// Each directory also gets a sheet.png contact sheet of its thumbnails.
func ExportTopBottom(r *Result, dir string, classes []int, k int) error {
	for _, class := range classes {
		top, bottom := r.TopBottom(class, k)
		sides := []struct {
			name string
			rank []int
		}{
			{"top", top},
			{"bottom", bottom},
		}
		for _, side := range sides {
			out := path.Join(dir, side.name, r.Classes[class])
			if err := os.MkdirAll(out, 0755); err != nil {
				return err
			}
			var copies []string
			for i, ix := range side.rank {
				dst := path.Join(out, fmt.Sprintf("%02d_%s", i+1, path.Base(r.Paths[ix])))
				if err := copyFile(r.Paths[ix], dst); err != nil {
					return errors.Wrap(err, "export "+r.Classes[class])
				}
				copies = append(copies, dst)
			}
			if err := writeSheet(copies, path.Join(out, "sheet.png")); err != nil {
				return errors.Wrap(err, "sheet "+r.Classes[class])
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// writeSheet draws the images as a single row of thumbnails.
func writeSheet(paths []string, file string) error {
	if len(paths) == 0 {
		return nil
	}
	sheet := image.NewRGBA(image.Rect(0, 0, thumbSize*len(paths), thumbSize))
	for i, p := range paths {
		src, err := img.Load(p)
		if err != nil {
			return err
		}
		thumb := resize.Thumbnail(thumbSize, thumbSize, src, resize.Bilinear)
		b := thumb.Bounds()
		x := i*thumbSize + (thumbSize-b.Dx())/2
		y := (thumbSize - b.Dy()) / 2
		draw.Draw(sheet, image.Rect(x, y, x+b.Dx(), y+b.Dy()), thumb, b.Min, draw.Src)
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, sheet)
}
