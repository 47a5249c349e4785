package vision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder

	"github.com/nfnt/resize"
)

const jpegQuality = 85

// resizeToJPEG scales an image down to maxWidth, keeping the aspect ratio,
// and re-encodes it as JPEG. Narrower images are only re-encoded.
func resizeToJPEG(data []byte, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()

	if maxWidth > 0 && width > maxWidth {
		ratio := float64(bounds.Dy()) / float64(width)
		img = resize.Resize(uint(maxWidth), uint(float64(maxWidth)*ratio), img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func dataURI(jpegBytes []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)
}
