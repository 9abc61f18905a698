package pdf

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// overlayScale is the number of overlay pixels per point. Overlays are
// stamped at 1/overlayScale so they stay sharp when zoomed.
const overlayScale = 2

const (
	maxAnnotationSize      = 2000
	defaultAnnotationFont  = 12
	defaultAnnotationColor = "#000000"
	annotationPadding      = 4
)

// parseHexColor parses #rgb or #rrggbb
func parseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q (use #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q (use #rrggbb)", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// hexColor validates value, substituting fallback when empty, and returns
// it in the #rrggbb form pdfcpu accepts
func hexColor(tool, value, fallback string) (string, error) {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	c, err := parseHexColor(value)
	if err != nil {
		return "", pdferrors.Validation(tool, "%v", err)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
}

// annotationStyle holds the parsed colors of an Annotation
type annotationStyle struct {
	fill, border, text *color.NRGBA
}

func parseAnnotationStyle(a Annotation) (annotationStyle, error) {
	var st annotationStyle
	parse := func(value string) (*color.NRGBA, error) {
		if strings.TrimSpace(value) == "" {
			return nil, nil
		}
		c, err := parseHexColor(value)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}

	var err error
	if st.fill, err = parse(a.FillColor); err != nil {
		return st, err
	}
	if st.border, err = parse(a.BorderColor); err != nil {
		return st, err
	}
	if a.BorderWidth > 0 && st.border == nil {
		c, _ := parseHexColor(defaultAnnotationColor)
		st.border = &c
	}
	if a.Text != "" {
		textColor := a.TextColor
		if textColor == "" {
			textColor = defaultAnnotationColor
		}
		if st.text, err = parse(textColor); err != nil {
			return st, err
		}
	}
	return st, nil
}

// renderAnnotation draws a into a transparent image sized at overlayScale
// pixels per point
func renderAnnotation(a Annotation, st annotationStyle) *image.NRGBA {
	w := int(math.Ceil(a.Width * overlayScale))
	h := int(math.Ceil(a.Height * overlayScale))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	if st.fill != nil {
		xdraw.Draw(img, img.Bounds(), image.NewUniform(*st.fill), image.Point{}, xdraw.Src)
	}

	if st.border != nil {
		bw := int(math.Max(1, math.Round(a.BorderWidth*overlayScale)))
		src := image.NewUniform(*st.border)
		for _, r := range []image.Rectangle{
			image.Rect(0, 0, w, bw),
			image.Rect(0, h-bw, w, h),
			image.Rect(0, 0, bw, h),
			image.Rect(w-bw, 0, w, h),
		} {
			xdraw.Draw(img, r, src, image.Point{}, xdraw.Src)
		}
	}

	if st.text != nil {
		size := a.FontSize
		if size <= 0 {
			size = defaultAnnotationFont
		}
		drawText(img, a.Text, *st.text, size*overlayScale, annotationPadding*overlayScale)
	}

	return img
}

// drawText writes text line by line from the top left corner. The fixed
// 7x13 bitmap face is scaled to the requested pixel height; anything that
// does not fit is clipped.
func drawText(dst *image.NRGBA, text string, c color.NRGBA, px, pad float64) {
	face := basicfont.Face7x13
	glyphW := face.Advance
	glyphH := face.Height
	scale := px / float64(glyphH)

	for i, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		n := len([]rune(line))
		src := image.NewNRGBA(image.Rect(0, 0, n*glyphW, glyphH))
		d := &font.Drawer{
			Dst:  src,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(0, face.Ascent),
		}
		d.DrawString(line)

		top := pad + float64(i)*px*1.2
		target := image.Rect(
			int(pad),
			int(top),
			int(pad+float64(n*glyphW)*scale),
			int(top+px),
		)
		if !target.Overlaps(dst.Bounds()) {
			break
		}
		xdraw.CatmullRom.Scale(dst, target, src, src.Bounds(), xdraw.Over, nil)
	}
}
