package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/dwell"
	"github.com/frudas24/gazewaldo/internal/game"
)

// Scale is the preview size relative to the surface.
const Scale = 0.5

const cursorRadius = 4

var (
	colorBackground = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	colorOutside    = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	colorInside     = color.RGBA{R: 60, G: 200, B: 90, A: 255}
	colorGrace      = color.RGBA{R: 230, G: 170, B: 40, A: 255}
	colorProgress   = color.RGBA{R: 60, G: 140, B: 240, A: 255}
	colorCursor     = color.RGBA{R: 240, G: 60, B: 60, A: 255}
)

// Renderer draws game views into JPEG frames.
type Renderer struct {
	surface coords.Size
	quality int
}

// NewRenderer returns a renderer for the given surface and JPEG quality.
func NewRenderer(surface coords.Size, quality int) *Renderer {
	if quality <= 0 || quality > 100 {
		quality = 60
	}
	return &Renderer{surface: surface, quality: quality}
}

// Draw renders the view and cursor into an RGBA image at preview scale.
func (r *Renderer) Draw(view game.View, cursor coords.Point) *image.RGBA {
	w := int(r.surface.W * Scale)
	h := int(r.surface.H * Scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	for _, b := range view.Buttons {
		rect := toImageRect(b.Rect.Scale(Scale, Scale))
		outline(img, rect, stateColor(b.State))
		if b.Progress > 0 {
			bar := rect
			bar.Min.Y = rect.Max.Y - 4
			bar.Max.X = rect.Min.X + int(float64(rect.Dx())*b.Progress)
			draw.Draw(img, bar.Intersect(img.Bounds()), image.NewUniform(colorProgress), image.Point{}, draw.Src)
		}
	}

	cx := int(cursor.X * Scale)
	cy := int(cursor.Y * Scale)
	dot := image.Rect(cx-cursorRadius, cy-cursorRadius, cx+cursorRadius+1, cy+cursorRadius+1)
	draw.Draw(img, dot.Intersect(img.Bounds()), image.NewUniform(colorCursor), image.Point{}, draw.Src)
	return img
}

// Render draws the view and encodes it as JPEG.
func (r *Renderer) Render(view game.View, cursor coords.Point) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, r.Draw(view, cursor), &jpeg.Options{Quality: r.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stateColor maps a button state name to its outline color.
func stateColor(state string) color.RGBA {
	switch state {
	case dwell.Inside.String():
		return colorInside
	case dwell.LeavingGrace.String():
		return colorGrace
	default:
		return colorOutside
	}
}

// toImageRect converts a surface rectangle to integer pixels.
func toImageRect(r coords.Rect) image.Rectangle {
	r = r.Normalize()
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))
}

// outline draws a 2px border around rect.
func outline(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	src := image.NewUniform(c)
	bounds := img.Bounds()
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+2),
		image.Rect(rect.Min.X, rect.Max.Y-2, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+2, rect.Max.Y),
		image.Rect(rect.Max.X-2, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(bounds), src, image.Point{}, draw.Src)
	}
}
