package ocr

import (
	"image"
	"image/color"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Preprocessing pipeline for scanned pages, applied before recognition:
// grayscale, median denoise, adaptive threshold, deskew. Scanned books
// in the corpus are photocopies with speckle and slight rotation, and
// recognition quality on them depends heavily on this cleanup.

const (
	thresholdWindow = 15   // adaptive threshold neighborhood, pixels
	thresholdBias   = 10.0 // subtracted from the local mean
	maxSkewDegrees  = 5.0
	skewStepDegrees = 0.5
)

// preprocess runs the full cleanup pipeline on a decoded page image.
func preprocess(img image.Image) *image.Gray {
	gray := toGray(img)
	gray = medianDenoise(gray)
	gray = adaptiveThreshold(gray)
	if angle := detectSkew(gray); angle != 0 {
		gray = rotate(gray, -angle)
	}
	return gray
}

// toGray converts any image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	xdraw.Draw(gray, bounds, img, bounds.Min, xdraw.Src)
	return gray
}

// medianDenoise applies a 3x3 median filter to suppress speckle noise.
func medianDenoise(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	var window [9]int

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px, py := x+dx, y+dy
					if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
						continue
					}
					window[n] = int(src.GrayAt(px, py).Y)
					n++
				}
			}
			values := window[:n]
			sort.Ints(values)
			dst.SetGray(x, y, color.Gray{Y: uint8(values[n/2])})
		}
	}
	return dst
}

// adaptiveThreshold binarizes against the local mean, computed with an
// integral image so the cost is independent of the window size.
func adaptiveThreshold(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(bounds)

	// integral[y][x] is the sum over the rectangle [0,0)..(x,y).
	integral := make([][]int64, h+1)
	for i := range integral {
		integral[i] = make([]int64, w+1)
	}
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			integral[y+1][x+1] = integral[y][x+1] + rowSum
		}
	}

	half := thresholdWindow / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w, x+half+1), min(h, y+half+1)
			area := int64((x1 - x0) * (y1 - y0))
			sum := integral[y1][x1] - integral[y0][x1] - integral[y1][x0] + integral[y0][x0]
			mean := float64(sum) / float64(area)

			v := src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			if float64(v) < mean-thresholdBias {
				dst.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: 0})
			} else {
				dst.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: 255})
			}
		}
	}
	return dst
}

// detectSkew estimates page rotation by maximizing the variance of
// horizontal projection profiles over candidate angles. Straight text
// lines produce sharply peaked profiles.
func detectSkew(src *image.Gray) float64 {
	bestAngle, bestScore := 0.0, projectionVariance(src, 0)
	for angle := -maxSkewDegrees; angle <= maxSkewDegrees; angle += skewStepDegrees {
		if angle == 0 {
			continue
		}
		if score := projectionVariance(src, angle); score > bestScore {
			bestScore, bestAngle = score, angle
		}
	}
	return bestAngle
}

// projectionVariance sums dark pixels per (sheared) row and returns the
// variance across rows. Sampling a grid keeps this cheap on large pages.
func projectionVariance(src *image.Gray, degrees float64) float64 {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	tan := math.Tan(degrees * math.Pi / 180)
	rows := make([]float64, h)

	stepX := max(1, w/512)
	stepY := max(1, h/512)
	for y := 0; y < h; y += stepY {
		for x := 0; x < w; x += stepX {
			if src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y < 128 {
				row := y + int(float64(x)*tan)
				if row >= 0 && row < h {
					rows[row]++
				}
			}
		}
	}

	var sum float64
	for _, v := range rows {
		sum += v
	}
	mean := sum / float64(h)
	var variance float64
	for _, v := range rows {
		d := v - mean
		variance += d * d
	}
	return variance / float64(h)
}

// rotate rotates the image around its center, filling the background
// with white.
func rotate(src *image.Gray, degrees float64) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for i := range dst.Pix {
		dst.Pix[i] = 255
	}

	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(bounds.Min.X+bounds.Max.X) / 2
	cy := float64(bounds.Min.Y+bounds.Max.Y) / 2

	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	xdraw.ApproxBiLinear.Transform(dst, m, src, bounds, xdraw.Src, nil)
	return dst
}
