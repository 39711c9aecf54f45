package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/filestore"
	"photo-curator-service/internal/transport/httpserver/dto"
	"photo-curator-service/internal/transport/httpserver/handler"
	"photo-curator-service/internal/transport/httpserver/middleware"
	"photo-curator-service/internal/validator"
	"photo-curator-service/pkg/locker"
)

type stubProvider struct {
	tag    domain.ProviderTag
	photos int
}

func (p *stubProvider) Name() domain.ProviderTag { return p.tag }

func (p *stubProvider) Search(_ context.Context, params domain.SearchParams) ([]*domain.PhotoDescriptor, error) {
	out := make([]*domain.PhotoDescriptor, 0, p.photos)
	for i := range p.photos {
		id := int64(len(params.Term)*100 + i + 1)
		raw := &domain.PexelsRecord{ID: id, Extension: "jpeg", Original: "https://images.pexels.test/" + strconv.FormatInt(id, 10) + ".jpeg", Tiny: "https://images.pexels.test/tiny.jpeg"}
		out = append(out, domain.NewPhotoDescriptor(raw, raw.Tiny, raw.Original))
	}

	return out, nil
}

func (p *stubProvider) HealthCheck(context.Context) error { return nil }

type noopDownloader struct {
	mu      sync.Mutex
	removed []string
}

func (d *noopDownloader) FetchSize(context.Context, string) (int64, error) { return 0, nil }

func (d *noopDownloader) Save(context.Context, string, string) (bool, error) { return false, nil }

func (d *noopDownloader) Remove(dest string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.removed = append(d.removed, dest)

	return nil
}

type testServer struct {
	server  *Server
	session *service.ReviewSession
	catalog *service.CatalogService
	dl      *noopDownloader
	dir     string
}

func newTestServer(t *testing.T, terms string, ready error) *testServer {
	t.Helper()

	ctx := context.Background()
	logger := zap.NewNop()
	v := validator.New()
	dir := t.TempDir()
	projectDir := filepath.Join(dir, "assets", "birds")

	store := filestore.NewCatalogStore(filepath.Join(projectDir, "json_files", "birds.json"), v, logger)
	catalog, err := service.NewCatalogService(ctx, store, logger)
	require.NoError(t, err)

	termsFile := filestore.NewTermsFile(filepath.Join(projectDir, "search.txt"))
	require.NoError(t, termsFile.Write(terms))
	termSvc := service.NewTermService(termsFile, catalog.SatisfiedKeys(10), logger)
	loaded, err := termSvc.Load()
	require.NoError(t, err)

	dl := &noopDownloader{}
	downloads := service.NewDownloadService(catalog, dl, locker.NewLocalLocker(),
		service.DownloadConfig{ImageDir: filepath.Join(projectDir, "image_files")}, logger)

	providers := map[domain.ProviderTag]domain.PhotoProvider{
		domain.ProviderPexels: &stubProvider{tag: domain.ProviderPexels, photos: 2},
	}
	session, err := service.NewReviewSession(catalog, providers, loaded, downloads,
		service.SessionConfig{PageSize: 30, Provider: domain.ProviderPexels}, logger)
	require.NoError(t, err)

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PROJECT_NAME=birds\nPEXELS_API_KEY=abcdefgh\n"), 0o644))

	site := handler.Site{ProjectName: "birds"}
	h := Handlers{
		Review:  handler.NewReviewHandler(session, catalog, downloads, site, v, logger),
		Gallery: handler.NewGalleryHandler(catalog, downloads, handler.GalleryConfig{ProjectDir: projectDir, ZipDir: filepath.Join(dir, "assets", "zip_files")}, site, v, logger),
		Setup:   handler.NewSetupHandler(termSvc, session, envFile, site, v, logger),
		Session: handler.NewSessionHandler(session, catalog, downloads, v, logger),
	}

	checks := map[string]middleware.PingFunc{
		"catalog": func(context.Context) error { return ready },
	}
	srv := NewServer(ServerConfig{
		TemplatesDir: filepath.Join("..", "..", "..", "web", "templates"),
		StaticDir:    filepath.Join("..", "..", "..", "web", "static"),
	}, h, checks, logger)

	return &testServer{server: srv, session: session, catalog: catalog, dl: dl, dir: projectDir}
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	resp, err := ts.server.App.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return resp, string(body)
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t, "cats", nil)

	resp, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := newTestServer(t, "cats", errors.New("disk gone"))
	resp, _ = down.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestReview_RedirectsToSetupWithoutTerms(t *testing.T) {
	ts := newTestServer(t, "", nil)

	resp, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/review", nil))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/setup", resp.Header.Get("Location"))
}

func TestReview_RendersCurrentPhoto(t *testing.T) {
	ts := newTestServer(t, "red panda\nowl", nil)

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/review", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "red panda")
	assert.Contains(t, body, "term 1 of 2")
	assert.Contains(t, body, "use-pexels-api")
}

func TestDecision_AcceptRejectAndPrevious(t *testing.T) {
	ts := newTestServer(t, "cats", nil)

	resp, _ := ts.do(t, postForm("/decision", url.Values{"action": {"yes"}}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 1, ts.catalog.CountFor("cats"))
	assert.Equal(t, 1, ts.session.Cursor().PhotoIndex)

	resp, _ = ts.do(t, postForm("/decision", url.Values{"action": {"previous"}}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 0, ts.session.Cursor().PhotoIndex)

	resp, _ = ts.do(t, postForm("/decision", url.Values{"action": {"maybe"}}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTermDecisionAndJump(t *testing.T) {
	ts := newTestServer(t, "a\nb\nc", nil)

	ts.do(t, postForm("/term-decision", url.Values{"action": {"next-term"}}))
	assert.Equal(t, 1, ts.session.Cursor().TermIndex)

	resp, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/review/3", nil))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 2, ts.session.Cursor().TermIndex)

	ts.do(t, httptest.NewRequest(http.MethodGet, "/review/9", nil))
	assert.Equal(t, 2, ts.session.Cursor().TermIndex, "out of range jump is ignored")
}

func TestAPIDecision_UnregisteredProvider(t *testing.T) {
	ts := newTestServer(t, "cats", nil)

	resp, _ := ts.do(t, postForm("/api-decision", url.Values{"action": {"use-flickr-api"}}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, postForm("/api-decision", url.Values{"action": {"use-pexels-api"}}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestSessionAPI(t *testing.T) {
	ts := newTestServer(t, "cats\ndogs", nil)

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pos dto.PositionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &pos))
	assert.Equal(t, "cats", pos.Term)
	assert.Equal(t, 2, pos.TermCount)
	require.NotNil(t, pos.Photo)

	resp, body = ts.do(t, postJSON("/api/v1/session/decision", `{"action":"accept"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &pos))
	assert.Equal(t, 1, pos.AcceptedForTerm)
	assert.Equal(t, 1, pos.PhotoIndex)

	resp, _ = ts.do(t, postJSON("/api/v1/session/decision", `{"action":"switch-provider"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = ts.do(t, postJSON("/api/v1/session/decision", `{"action":"switch-provider","provider":"unsplash"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "unknown provider")

	resp, body = ts.do(t, postJSON("/api/v1/session/jump", `{"index":2}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &pos))
	assert.Equal(t, "dogs", pos.Term)

	resp, _ = ts.do(t, postJSON("/api/v1/session/jump", `{"index":0}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCatalogAndProvidersAPI(t *testing.T) {
	ts := newTestServer(t, "cats", nil)
	ts.do(t, postForm("/decision", url.Values{"action": {"yes"}}))

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/catalog?provider=pexels", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog dto.CatalogResponse
	require.NoError(t, json.Unmarshal([]byte(body), &catalog))
	assert.Equal(t, 1, catalog.Total)
	assert.Equal(t, "cats", catalog.Terms[0].Term)

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/catalog?provider=flickr", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &catalog))
	assert.Equal(t, 0, catalog.Total)

	resp, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/catalog?provider=getty", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var providers dto.ProvidersResponse
	require.NoError(t, json.Unmarshal([]byte(body), &providers))
	assert.Equal(t, dto.ProvidersResponse{Providers: []string{"pexels"}, Active: "pexels"}, providers)
}

func TestGallery_DeleteImage(t *testing.T) {
	ts := newTestServer(t, "cats", nil)
	ts.do(t, postForm("/decision", url.Values{"action": {"yes"}}))
	rec := ts.catalog.Snapshot()["cats"][0]

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/gallery", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="`+rec.ID+`"`)

	resp, _ = ts.do(t, postForm("/delete-image", url.Values{"term": {"cats"}, "imageID": {rec.ID}, "apiType": {"pexels"}}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 0, ts.catalog.CountFor("cats"))
	assert.Equal(t, []string{filepath.Join(ts.dir, "image_files", "pexels", "cats", rec.ID+".jpeg")}, ts.dl.removed)

	resp, _ = ts.do(t, postForm("/delete-image", url.Values{"term": {"cats"}, "imageID": {rec.ID}, "apiType": {"pexels"}}))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGallery_DownloadZip(t *testing.T) {
	ts := newTestServer(t, "cats", nil)

	resp, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/download-zip", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "birds.zip")
}

func TestSetup_SaveRestartsSession(t *testing.T) {
	ts := newTestServer(t, "cats", nil)

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/setup", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "cats")

	resp, _ = ts.do(t, postForm("/setup", url.Values{"terms": {"owl\nheron"}}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, []domain.Term{"owl", "heron"}, ts.session.Terms())

	data, err := os.ReadFile(filepath.Join(ts.dir, "search.txt"))
	require.NoError(t, err)
	assert.Equal(t, "owl\nheron\n", string(data))
}

func TestSettings_MasksSecrets(t *testing.T) {
	ts := newTestServer(t, "cats", nil)

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/settings", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "PROJECT_NAME")
	assert.Contains(t, body, "abcd****")
	assert.NotContains(t, body, "abcdefgh")
}

func TestUnknownAPIRouteIsJSON(t *testing.T) {
	ts := newTestServer(t, "cats", nil)

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"error"`)
}
