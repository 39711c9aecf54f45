package download

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// ThumbDir is the sub folder, next to the image, that holds thumbnails.
const ThumbDir = "thumbs"

// ThumbnailPath returns where the thumbnail of imagePath is written.
func ThumbnailPath(imagePath string) string {
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	return filepath.Join(filepath.Dir(imagePath), ThumbDir, base+".jpg")
}

// WriteThumbnail writes a JPEG scaled to width, keeping the aspect ratio.
// Images already narrower than width are copied at their own size.
func WriteThumbnail(imagePath string, width uint) error {
	src, err := os.Open(imagePath)
	if err != nil {
		return err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", imagePath, err)
	}

	thumb := resize.Thumbnail(width, width, img, resize.Lanczos3)

	out := ThumbnailPath(imagePath)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, thumb, &jpeg.Options{Quality: 80}); err != nil {
		f.Close()
		return fmt.Errorf("encoding thumbnail: %w", err)
	}

	return f.Close()
}
