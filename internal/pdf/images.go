package pdf

import (
	"fmt"
	"image"
	_ "image/gif" // register GIF decoding
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// directImageFormats maps the extensions pdfcpu imports as-is to the
// format image.DecodeConfig reports for them
var directImageFormats = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".tif":  "tiff",
	".tiff": "tiff",
}

// imageFile is an image ready for pdfcpu to import
type imageFile struct {
	Path   string
	Width  int
	Height int
}

// prepareImage checks that path holds a decodable image. Formats pdfcpu
// cannot read directly (WebP, BMP, GIF, or a file whose extension lies
// about its content) are re-encoded as PNG into dir.
func prepareImage(tool, path, original, dir string, index int) (imageFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return imageFile{}, pdferrors.Internal(tool, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return imageFile{}, pdferrors.Validation(tool, "unsupported image: %s", original).WithDetails("%v", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if directImageFormats[ext] == format {
		return imageFile{Path: path, Width: cfg.Width, Height: cfg.Height}, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return imageFile{}, pdferrors.Internal(tool, err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return imageFile{}, pdferrors.Validation(tool, "unsupported image: %s", original).WithDetails("%v", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	converted := filepath.Join(dir, fmt.Sprintf("%03d_%s.png", index, base))
	if err := writePNG(converted, img); err != nil {
		return imageFile{}, pdferrors.Internal(tool, err)
	}

	return imageFile{Path: converted, Width: cfg.Width, Height: cfg.Height}, nil
}

func writeJPEG(path string, img image.Image, quality int) error {
	return writeImage(path, func(w io.Writer) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	})
}

func writePNG(path string, img image.Image) error {
	return writeImage(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}

func writeImage(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f)
}
