package download

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExecutor(maxKB int, thumbWidth uint) *Executor {
	e := NewExecutor(Config{MaxImageKB: maxKB, Timeout: 5 * time.Second, ThumbnailWidth: thumbWidth}, zap.NewNop())

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(e.client.GetClient())

	return e
}

func headResponder(size int) httpmock.Responder {
	return func(*http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(200, "")
		resp.Header.Set("Content-Length", strconv.Itoa(size))

		return resp, nil
	}
}

func TestExecutor_FetchSize_FromHead(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	e := newTestExecutor(256, 0)
	httpmock.RegisterResponder("HEAD", "https://img.test/a.jpg", headResponder(300_000))

	size, err := e.FetchSize(context.Background(), "https://img.test/a.jpg")

	require.NoError(t, err)
	assert.Equal(t, int64(300_000), size)
	assert.Equal(t, 0, httpmock.GetCallCountInfo()["GET https://img.test/a.jpg"])
}

func TestExecutor_FetchSize_StreamsWithoutContentLength(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	e := newTestExecutor(256, 0)
	httpmock.RegisterResponder("HEAD", "https://img.test/a.jpg", httpmock.NewStringResponder(405, ""))
	httpmock.RegisterResponder("GET", "https://img.test/a.jpg", httpmock.NewStringResponder(200, strings.Repeat("x", 1234)))

	size, err := e.FetchSize(context.Background(), "https://img.test/a.jpg")

	require.NoError(t, err)
	assert.Equal(t, int64(1234), size)
}

func TestExecutor_Save_WritesFile(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	e := newTestExecutor(256, 0)
	body := strings.Repeat("p", 2048)
	httpmock.RegisterResponder("HEAD", "https://img.test/a.jpg", headResponder(len(body)))
	httpmock.RegisterResponder("GET", "https://img.test/a.jpg", httpmock.NewStringResponder(200, body))

	dest := filepath.Join(t.TempDir(), "pexels", "cats", "42.jpeg")
	ok, err := e.Save(context.Background(), "https://img.test/a.jpg", dest)

	require.NoError(t, err)
	assert.True(t, ok)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestExecutor_Save_SkipsOversized(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	e := newTestExecutor(256, 0)
	// 256 KB is inclusive, one byte over is not
	httpmock.RegisterResponder("HEAD", "https://img.test/exact.jpg", headResponder(256_000))
	httpmock.RegisterResponder("GET", "https://img.test/exact.jpg", httpmock.NewStringResponder(200, "ok"))
	httpmock.RegisterResponder("HEAD", "https://img.test/big.jpg", headResponder(256_001))

	dir := t.TempDir()

	ok, err := e.Save(context.Background(), "https://img.test/big.jpg", filepath.Join(dir, "big.jpg"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(dir, "big.jpg"))

	ok, err = e.Save(context.Background(), "https://img.test/exact.jpg", filepath.Join(dir, "exact.jpg"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecutor_Save_NoCeiling(t *testing.T) {
	e := NewExecutor(Config{MaxImageKB: 0}, zap.NewNop())
	assert.True(t, e.Fits(1<<40))
}

func TestExecutor_Save_HTTPError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	e := newTestExecutor(256, 0)
	httpmock.RegisterResponder("HEAD", "https://img.test/gone.jpg", headResponder(10))
	httpmock.RegisterResponder("GET", "https://img.test/gone.jpg", httpmock.NewStringResponder(404, "missing"))

	dest := filepath.Join(t.TempDir(), "gone.jpg")
	ok, err := e.Save(context.Background(), "https://img.test/gone.jpg", dest)

	require.Error(t, err)
	assert.False(t, ok)
	assert.NoFileExists(t, dest)
}

func TestExecutor_Save_WritesThumbnail(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		img.Set(x, x%200, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	e := newTestExecutor(0, 100)
	httpmock.RegisterResponder("HEAD", "https://img.test/p.png", headResponder(buf.Len()))
	httpmock.RegisterResponder("GET", "https://img.test/p.png", httpmock.NewBytesResponder(200, buf.Bytes()))

	dest := filepath.Join(t.TempDir(), "p.png")
	ok, err := e.Save(context.Background(), "https://img.test/p.png", dest)
	require.NoError(t, err)
	require.True(t, ok)

	f, err := os.Open(ThumbnailPath(dest))
	require.NoError(t, err)
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestThumbnailPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", ThumbDir, "42.jpg"), ThumbnailPath(filepath.Join("a", "b", "42.jpeg")))
}

func TestExecutor_Remove(t *testing.T) {
	e := newTestExecutor(0, 0)
	defer httpmock.DeactivateAndReset()

	dir := t.TempDir()
	img := filepath.Join(dir, "7.jpg")
	thumb := ThumbnailPath(img)
	require.NoError(t, os.MkdirAll(filepath.Dir(thumb), 0o755))
	require.NoError(t, os.WriteFile(img, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(thumb, []byte("x"), 0o644))

	require.NoError(t, e.Remove(img))
	assert.NoFileExists(t, img)
	assert.NoFileExists(t, thumb)

	assert.NoError(t, e.Remove(img), "missing files are not an error")
}
