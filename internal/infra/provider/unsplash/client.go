// Package unsplash implements the Unsplash photo search client.
package unsplash

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/infra/provider"
)

// Endpoint is the API path for the Unsplash photo search.
const Endpoint = "/search/photos"

// Client implements domain.PhotoProvider for Unsplash.
type Client struct {
	accessKey string
	client    *resty.Client
	cb        *gobreaker.CircuitBreaker[*resty.Response]
	logger    *zap.Logger
}

// New creates a new Unsplash client.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		accessKey: cfg.APIKey,
		client:    provider.NewRestyClient(cfg).SetHeader("Accept-Version", "v1"),
		cb:        provider.NewCircuitBreaker[*resty.Response]("unsplash", cfg.CB, logger),
		logger:    logger,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() domain.ProviderTag {
	return domain.ProviderUnsplash
}

// Search retrieves one page of photos for the term, ordered by relevance.
func (c *Client) Search(ctx context.Context, params domain.SearchParams) ([]*domain.PhotoDescriptor, error) {
	params.Validate()

	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result Response
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"query":     params.Term,
				"page":      strconv.Itoa(params.Page),
				"per_page":  strconv.Itoa(params.PageSize),
				"order_by":  "relevant",
				"client_id": c.accessKey,
			}).
			SetResult(&result).
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if err := provider.CheckResponse("unsplash", r); err != nil {
			return nil, err
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("unsplash search failed",
			zap.String("term", params.Term),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("searching unsplash: %w", err)
	}

	result := resp.Result().(*Response)
	photos := make([]*domain.PhotoDescriptor, 0, len(result.Results))

	for _, item := range result.Results {
		if item.ID == "" {
			continue
		}
		photos = append(photos, ToDomain(item))
	}

	c.logger.Info("unsplash search completed",
		zap.String("term", params.Term),
		zap.Int("count", len(photos)),
	)

	return photos, nil
}

// HealthCheck verifies the provider is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"query": "nature", "per_page": "1", "client_id": c.accessKey}).
		Get(Endpoint)
	if err != nil {
		return err
	}
	return provider.CheckResponse("unsplash health check", resp)
}
