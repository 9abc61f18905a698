package pdf

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#ff0000", want: color.NRGBA{R: 255, A: 255}},
		{in: "#0F0", want: color.NRGBA{G: 255, A: 255}},
		{in: " 336699 ", want: color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "blue", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseHexColor(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestHexColor(t *testing.T) {
	c, err := hexColor(ToolWatermark, "", "#ABC")
	require.NoError(t, err)
	assert.Equal(t, "#aabbcc", c)

	_, err = hexColor(ToolWatermark, "nope", "#000")
	assert.Error(t, err)
}

func TestParseAnnotationStyle(t *testing.T) {
	st, err := parseAnnotationStyle(Annotation{Text: "hi", BorderWidth: 1})
	require.NoError(t, err)
	assert.Nil(t, st.fill)
	require.NotNil(t, st.border)
	require.NotNil(t, st.text)
	assert.Equal(t, color.NRGBA{A: 255}, *st.border)
	assert.Equal(t, color.NRGBA{A: 255}, *st.text)

	st, err = parseAnnotationStyle(Annotation{FillColor: "#00ff00"})
	require.NoError(t, err)
	assert.Nil(t, st.text)
	assert.Nil(t, st.border)
	require.NotNil(t, st.fill)

	_, err = parseAnnotationStyle(Annotation{Text: "x", TextColor: "#1"})
	assert.Error(t, err)
}

func TestRenderAnnotation(t *testing.T) {
	fill := color.NRGBA{R: 255, G: 255, A: 255}
	border := color.NRGBA{B: 255, A: 255}

	img := renderAnnotation(Annotation{Width: 20, Height: 10, BorderWidth: 1}, annotationStyle{fill: &fill, border: &border})
	assert.Equal(t, 20*overlayScale, img.Bounds().Dx())
	assert.Equal(t, 10*overlayScale, img.Bounds().Dy())
	assert.Equal(t, border, img.NRGBAAt(0, 0))
	assert.Equal(t, border, img.NRGBAAt(img.Bounds().Dx()-1, img.Bounds().Dy()-1))
	assert.Equal(t, fill, img.NRGBAAt(img.Bounds().Dx()/2, img.Bounds().Dy()/2))

	// without fill the background stays transparent
	img = renderAnnotation(Annotation{Width: 10, Height: 10}, annotationStyle{border: &border})
	assert.Equal(t, uint8(0), img.NRGBAAt(10, 10).A)
}

func TestRenderAnnotationText(t *testing.T) {
	black := color.NRGBA{A: 255}
	img := renderAnnotation(Annotation{Width: 100, Height: 30, Text: "HELLO", FontSize: 12}, annotationStyle{text: &black})

	inked := 0
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if img.NRGBAAt(x, y).A > 0 {
				inked++
			}
		}
	}
	assert.Positive(t, inked)
	assert.Less(t, inked, b.Dx()*b.Dy())
}
