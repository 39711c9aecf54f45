package flickr

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/provider"
)

const testEndpoint = "https://www.flickr.test/search/"

const searchPage = `<!DOCTYPE html>
<html><body>
  <img src="/images/logo.png" alt="logo">
  <div class="photo-list-photo-view">
    <img src="//live.staticflickr.com/65535/5312_abc123_m.jpg" loading="lazy">
    <img src="https://live.staticflickr.com/65535/5313_def456_n.jpg">
    <img src="https://live.staticflickr.com/65535/5312_abc123_m.jpg">
    <img src="https://live.staticflickr.com/65535/5314_ghi789_z.jpg"/>
    <img>
  </div>
</body></html>`

func newTestClient() *Client {
	cfg := provider.ClientConfig{
		BaseURL: "https://www.flickr.test",
		Timeout: 5 * time.Second,
		Retry: provider.RetryConfig{
			MaxAttempts: 1,
			WaitTime:    10 * time.Millisecond,
			MaxWaitTime: 50 * time.Millisecond,
		},
		CB: provider.CBConfig{
			MaxRequests:  5,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}
	client := New(cfg, zap.NewNop())

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(client.client.GetClient())

	return client
}

func TestHighResURL(t *testing.T) {
	tests := map[string]string{
		"https://live.staticflickr.com/1/5312_abc_m.jpg": "https://live.staticflickr.com/1/5312_abc_b.jpg",
		"https://live.staticflickr.com/1/5312_abc_b.jpg": "https://live.staticflickr.com/1/5312_abc_b.jpg",
		"https://live.staticflickr.com/1/5312_abc.jpg":   "https://live.staticflickr.com/1/5312_abc.jpg",
	}

	for in, want := range tests {
		assert.Equal(t, want, HighResURL(in), in)
	}
}

func TestPhotoID(t *testing.T) {
	assert.Equal(t, "5312", PhotoID("https://live.staticflickr.com/65535/5312_abc123_b.jpg"))
	assert.Equal(t, "noseparator.jpg", PhotoID("https://live.staticflickr.com/noseparator.jpg"))
}

func TestParsePhotos_DedupAndLimit(t *testing.T) {
	photos, err := ParsePhotos(strings.NewReader(searchPage), 0)
	require.NoError(t, err)
	require.Len(t, photos, 3)

	assert.Equal(t, "5312", photos[0].ID)
	assert.Equal(t, "https://live.staticflickr.com/65535/5312_abc123_m.jpg", photos[0].URL)
	assert.Equal(t, "https://live.staticflickr.com/65535/5312_abc123_b.jpg", photos[0].HighResURL)
	assert.Equal(t, "5313", photos[1].ID)
	assert.Equal(t, "5314", photos[2].ID)

	limited, err := ParsePhotos(strings.NewReader(searchPage), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

// TestFlickr_Search_Success tests scraping through the client.
func TestFlickr_Search_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", testEndpoint, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "owl", req.URL.Query().Get("text"))
		assert.Equal(t, Licenses, req.URL.Query().Get("license"))
		assert.Equal(t, provider.UserAgent, req.Header.Get("User-Agent"))

		return httpmock.NewStringResponse(200, searchPage), nil
	})

	photos, err := client.Search(context.Background(), domain.NewSearchParams("owl", 30))

	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, domain.ProviderFlickr, photos[0].Provider)
	assert.Equal(t, "https://live.staticflickr.com/65535/5312_abc123_b.jpg", domain.BestURL(photos[0]))
}

// TestFlickr_Search_HTTPError tests status error handling.
func TestFlickr_Search_HTTPError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", testEndpoint, httpmock.NewStringResponder(403, "forbidden"))

	photos, err := client.Search(context.Background(), domain.NewSearchParams("owl", 30))

	require.Error(t, err)
	assert.Nil(t, photos)
	assert.Contains(t, err.Error(), "status 403")
}
