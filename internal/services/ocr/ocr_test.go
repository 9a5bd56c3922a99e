package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTSV(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tthe\n" +
		"5\t1\t1\t1\t1\t2\t12\t0\t10\t10\t80\tword\n" +
		"5\t1\t1\t1\t2\t1\t0\t12\t10\t10\t70\tnext\n" +
		"5\t1\t1\t1\t2\t2\t12\t12\t10\t10\t0\tnoise\n"

	page := parseTSV(tsv)

	assert.Equal(t, "the word\nnext", page.Text)
	assert.Equal(t, 3, page.Words)
	assert.InDelta(t, 0.8, page.Confidence, 0.001) // (90+80+70)/3/100
}

func TestParseTSV_ZeroConfidenceExcluded(t *testing.T) {
	tsv := "5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t0\tgarbage\n" +
		"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t-1\tmore\n"

	page := parseTSV(tsv)
	assert.Equal(t, "", page.Text)
	assert.Equal(t, 0, page.Words)
	assert.Equal(t, 0.0, page.Confidence)
}

func TestParseTSV_Empty(t *testing.T) {
	page := parseTSV("")
	assert.Equal(t, "", page.Text)
	assert.Equal(t, 0, page.Words)
}

func TestToGray(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	gray := toGray(src)
	assert.Equal(t, src.Bounds(), gray.Bounds())
	// Luma of (200,100,50) lands between the channel extremes.
	v := gray.GrayAt(2, 2).Y
	assert.Greater(t, v, uint8(50))
	assert.Less(t, v, uint8(200))
}

func TestMedianDenoise_RemovesSpeckle(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 9, 9))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	// Single dark speckle in a white field.
	src.SetGray(4, 4, color.Gray{Y: 0})

	dst := medianDenoise(src)
	assert.Equal(t, uint8(255), dst.GrayAt(4, 4).Y)
}

func TestAdaptiveThreshold_Binarizes(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	// Dark text-like blob.
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			src.SetGray(x, y, color.Gray{Y: 20})
		}
	}

	dst := adaptiveThreshold(src)
	assert.Equal(t, uint8(0), dst.GrayAt(15, 15).Y)
	assert.Equal(t, uint8(255), dst.GrayAt(2, 2).Y)
}

func TestDetectSkew_StraightLinesNearZero(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	// Horizontal dark lines every 20 rows.
	for y := 10; y < 200; y += 20 {
		for x := 0; x < 200; x++ {
			src.SetGray(x, y, color.Gray{Y: 0})
		}
	}

	angle := detectSkew(src)
	assert.InDelta(t, 0.0, angle, 0.51)
}

func TestRotate_PreservesBounds(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 50, 50))
	dst := rotate(src, 2.5)
	assert.Equal(t, src.Bounds(), dst.Bounds())
}
