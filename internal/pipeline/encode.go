package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// JPEGQuality is the lossy quality captured frames are encoded at.
const JPEGQuality = 80

// EncodeJPEG encodes a frame for transport to the extraction capability.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("EncodeJPEG: %w", err)
	}
	return buf.Bytes(), nil
}
