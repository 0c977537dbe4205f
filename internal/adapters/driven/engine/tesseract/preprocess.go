package tesseract

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// Preprocessing parameters: the contrast factor the fallback applies
// before recognition and the long-edge size scans are normalised to.
const (
	contrastFactor = 1.6
	targetLongEdge = 2400
)

// PreprocessToFile writes a recognition-ready copy of the page image
// (grayscale, contrast-boosted, scaled) next to the source and
// returns its path. The caller removes the file when done.
func PreprocessToFile(imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", imagePath, err)
	}

	prep := Preprocess(img)
	dest := preprocessedPath(imagePath)
	if err := writePNG(dest, prep); err != nil {
		return "", err
	}
	return dest, nil
}

// Preprocess converts the image to grayscale, boosts contrast and
// scales the long edge to the recognition target size.
func Preprocess(img image.Image) *image.Gray {
	gray := toGray(img)
	gray = boostContrast(gray, contrastFactor)
	return scaleLongEdge(gray, targetLongEdge)
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	return gray
}

// boostContrast stretches pixel values away from the image mean:
// out = mean + factor*(in - mean), clamped to the byte range.
func boostContrast(gray *image.Gray, factor float64) *image.Gray {
	pix := gray.Pix
	if len(pix) == 0 {
		return gray
	}

	var sum float64
	for _, p := range pix {
		sum += float64(p)
	}
	mean := sum / float64(len(pix))

	out := image.NewGray(gray.Bounds())
	for i, p := range pix {
		v := mean + factor*(float64(p)-mean)
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		out.Pix[i] = uint8(v + 0.5)
	}
	return out
}

// scaleLongEdge resizes so the longer side matches target, preserving
// aspect ratio. Images already at the target pass through.
func scaleLongEdge(gray *image.Gray, target int) *image.Gray {
	b := gray.Bounds()
	long := b.Dx()
	if b.Dy() > long {
		long = b.Dy()
	}
	if target <= 0 || long == 0 || long == target {
		return gray
	}

	scale := float64(target) / float64(long)
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), gray, b, xdraw.Src, nil)
	return dst
}

func writePNG(dest string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
