package homepage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxAvatarWidth = 256
	jpegQuality    = 85
)

// avatarCache holds the resized avatar until its source file changes.
type avatarCache struct {
	mu      sync.Mutex
	source  string
	modTime time.Time
	data    []byte
}

// thumbnail decodes an image from src, shrinks it to at most maxWidth
// pixels wide keeping the aspect ratio, and encodes it as JPEG.
func thumbnail(src io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxWidth {
		newH := max(1, h*maxWidth/w)
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// avatarPath maps the configured avatar URL path onto the static dir.
// ok is false for remote avatars.
func (a *App) avatarPath() (string, bool) {
	avatar := a.Site.PersonalInfo.Avatar
	if avatar == "" || !strings.HasPrefix(avatar, "/") || strings.HasPrefix(avatar, "//") {
		return "", false
	}
	rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean(avatar)), "/"))
	return filepath.Join(a.Config.StaticDir, rel), true
}

func (a *App) handleAvatar(c echo.Context) error {
	avatar := a.Site.PersonalInfo.Avatar
	if avatar == "" {
		return echo.ErrNotFound
	}
	path, local := a.avatarPath()
	if !local {
		return c.Redirect(http.StatusFound, avatar)
	}
	data, err := a.avatar.load(path)
	if os.IsNotExist(err) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

func (ac *avatarCache) load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.data != nil && ac.source == path && ac.modTime.Equal(info.ModTime()) {
		return ac.data, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := thumbnail(f, maxAvatarWidth)
	if err != nil {
		return nil, fmt.Errorf("avatar %s: %w", path, err)
	}
	ac.source, ac.modTime, ac.data = path, info.ModTime(), data
	return data, nil
}
