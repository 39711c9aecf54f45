// Package pixabay implements the Pixabay photo search client.
package pixabay

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

// Endpoint is the API path for the Pixabay search endpoint.
const Endpoint = "/api/"

// Client implements domain.PhotoProvider for Pixabay.
type Client struct {
	apiKey string
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new Pixabay client.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		apiKey: cfg.APIKey,
		client: provider.NewRestyClient(cfg),
		cb:     provider.NewCircuitBreaker[*resty.Response]("pixabay", cfg.CB, logger),
		logger: logger,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() domain.ProviderTag {
	return domain.ProviderPixabay
}

// Search retrieves one page of photos for the term.
func (c *Client) Search(ctx context.Context, params domain.SearchParams) ([]*domain.PhotoDescriptor, error) {
	params.Validate()

	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result Response
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"key":        c.apiKey,
				"q":          params.Term,
				"page":       strconv.Itoa(params.Page),
				"per_page":   strconv.Itoa(params.PageSize),
				"image_type": "photo",
			}).
			SetResult(&result).
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if err := provider.CheckResponse("pixabay", r); err != nil {
			return nil, err
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("pixabay search failed",
			zap.String("term", params.Term),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("searching pixabay: %w", err)
	}

	result := resp.Result().(*Response)
	photos := make([]*domain.PhotoDescriptor, 0, len(result.Hits))

	for _, hit := range result.Hits {
		if hit.ID == 0 {
			continue
		}
		photos = append(photos, ToDomain(hit))
	}

	c.logger.Info("pixabay search completed",
		zap.String("term", params.Term),
		zap.Int("count", len(photos)),
	)

	return photos, nil
}

// HealthCheck verifies the provider is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"key": c.apiKey, "q": "nature", "per_page": "3"}).
		Get(Endpoint)
	if err != nil {
		return err
	}
	return provider.CheckResponse("pixabay health check", resp)
}
