// Package flickr implements a Flickr search client that scrapes the public
// search page for openly licensed photos.
package flickr

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/provider"
)

const (
	// Endpoint is the search page path.
	Endpoint = "/search/"

	// Licenses restricts results to commercial-use and public-domain licenses.
	Licenses = "4,5,6,9,10"
)

// Client implements domain.PhotoProvider for Flickr.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new Flickr client. Flickr needs no API key.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: provider.NewRestyClient(cfg),
		cb:     provider.NewCircuitBreaker[*resty.Response]("flickr", cfg.CB, logger),
		logger: logger,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() domain.ProviderTag {
	return domain.ProviderFlickr
}

// Search scrapes one page of search results for the term.
func (c *Client) Search(ctx context.Context, params domain.SearchParams) ([]*domain.PhotoDescriptor, error) {
	params.Validate()

	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"text":    params.Term,
				"license": Licenses,
			}).
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if err := provider.CheckResponse("flickr", r); err != nil {
			return nil, err
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("flickr search failed",
			zap.String("term", params.Term),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("searching flickr: %w", err)
	}

	records, err := ParsePhotos(bytes.NewReader(resp.Body()), params.PageSize)
	if err != nil {
		return nil, fmt.Errorf("parsing flickr page: %w", err)
	}

	photos := make([]*domain.PhotoDescriptor, 0, len(records))
	for _, rec := range records {
		photos = append(photos, domain.NewPhotoDescriptor(rec, rec.URL, rec.HighResURL))
	}

	c.logger.Info("flickr search completed",
		zap.String("term", params.Term),
		zap.Int("count", len(photos)),
	)

	return photos, nil
}

// HealthCheck verifies the search page is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("text", "nature").
		Get(Endpoint)
	if err != nil {
		return err
	}
	return provider.CheckResponse("flickr health check", resp)
}
