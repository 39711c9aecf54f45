package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/provider"
)

const testEndpoint = "https://api.unsplash.test/search/photos"

func newTestClient() *Client {
	cfg := provider.ClientConfig{
		BaseURL: "https://api.unsplash.test",
		APIKey:  "access-key",
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

const successBody = `{
  "total": 1, "total_pages": 1,
  "results": [{
    "id": "Eh3dU2bB0Qo",
    "created_at": "2020-05-01T10:00:00Z",
    "width": 4000, "height": 6000, "color": "#a6a6a6",
    "alt_description": "red panda on a branch",
    "urls": {
      "raw": "https://images.unsplash.com/photo-1?ixid=M3w1&ixlib=rb-4.0.3",
      "full": "https://images.unsplash.com/photo-1?crop=entropy&fm=jpg&ixid=M3w1",
      "regular": "https://images.unsplash.com/photo-1?w=1080&ixid=M3w1",
      "small": "https://images.unsplash.com/photo-1?w=400&ixid=M3w1",
      "thumb": "https://images.unsplash.com/photo-1?w=200&ixid=M3w1",
      "small_s3": "https://s3.us-west-2.amazonaws.com/photo-1"
    },
    "links": {"self": "https://api.unsplash.com/photos/Eh3dU2bB0Qo", "html": "https://unsplash.com/photos/Eh3dU2bB0Qo"},
    "user": {
      "id": "u1", "username": "jane",
      "profile_image": {"small": "https://images.unsplash.com/profile-1?w=32"},
      "links": {"self": "https://api.unsplash.com/users/jane?ixid=abc", "html": "https://unsplash.com/@jane"}
    },
    "current_user_collections": []
  }]
}`

// TestUnsplash_Search_Success tests successful search and mapping.
func TestUnsplash_Search_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", testEndpoint, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		assert.Equal(t, "access-key", q.Get("client_id"))
		assert.Equal(t, "relevant", q.Get("order_by"))
		assert.Equal(t, "red panda", q.Get("query"))

		resp := httpmock.NewStringResponse(200, successBody)
		resp.Header.Set("Content-Type", "application/json")

		return resp, nil
	})

	photos, err := client.Search(context.Background(), domain.NewSearchParams("red panda", 30))

	require.NoError(t, err)
	require.Len(t, photos, 1)

	photo := photos[0]
	assert.Equal(t, "Eh3dU2bB0Qo", photo.ID)
	assert.Equal(t, domain.ProviderUnsplash, photo.Provider)
	assert.Equal(t, "https://images.unsplash.com/photo-1?crop=entropy&fm=jpg", domain.BestURL(photo))
}

// TestUnsplash_AcceptedRecordHasNoTrackingID tests serialization of an accepted photo.
func TestUnsplash_AcceptedRecordHasNoTrackingID(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", testEndpoint, func(*http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(200, successBody)
		resp.Header.Set("Content-Type", "application/json")

		return resp, nil
	})

	photos, err := client.Search(context.Background(), domain.NewSearchParams("red panda", 30))
	require.NoError(t, err)
	require.Len(t, photos, 1)

	rec := domain.ToCatalogRecord(photos[0])
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "ixid")
	assert.Contains(t, string(data), `"apiType":"unsplash"`)

	payload := rec.Payload.(*domain.UnsplashRecord)
	assert.Equal(t, "https://images.unsplash.com/photo-1?crop=entropy&fm=jpg", payload.URLs.Full)
	assert.Equal(t, "https://api.unsplash.com/users/jane", payload.User.Links.Self)
}

// TestUnsplash_Search_HTTPError tests status error handling.
func TestUnsplash_Search_HTTPError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	for _, code := range []int{401, 403, 502} {
		t.Run(fmt.Sprintf("status %d", code), func(t *testing.T) {
			httpmock.Reset()
			client := newTestClient()
			httpmock.RegisterResponder("GET", testEndpoint, httpmock.NewStringResponder(code, `{"errors":["x"]}`))

			photos, err := client.Search(context.Background(), domain.NewSearchParams("cats", 30))

			require.Error(t, err)
			assert.Nil(t, photos)
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", code))
		})
	}
}
