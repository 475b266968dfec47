package pageops

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/edentir/edenpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// normalizeImage returns data in a format gofpdf can embed together with its
// gofpdf image type. PNG, JPEG and GIF pass through; BMP, TIFF and WebP are
// decoded and re-encoded as PNG.
func normalizeImage(data []byte) ([]byte, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: image: %v", edenpdf.ErrInvalidParam, err)
	}
	switch format {
	case "png":
		return data, "PNG", nil
	case "jpeg":
		return data, "JPG", nil
	case "gif":
		return data, "GIF", nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s image: %v", edenpdf.ErrInvalidParam, format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("pageops: re-encoding %s image: %w", format, err)
	}
	return buf.Bytes(), "PNG", nil
}
