// Package pexels implements the Pexels photo search client.
package pexels

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

// Endpoint is the API path for the Pexels search endpoint.
const Endpoint = "/v1/search"

// Client implements domain.PhotoProvider for Pexels.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new Pexels client.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	client := provider.NewRestyClient(cfg).
		SetHeader("Authorization", cfg.APIKey)

	return &Client{
		client: client,
		cb:     provider.NewCircuitBreaker[*resty.Response]("pexels", cfg.CB, logger),
		logger: logger,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() domain.ProviderTag {
	return domain.ProviderPexels
}

// Search retrieves one page of photos for the term.
func (c *Client) Search(ctx context.Context, params domain.SearchParams) ([]*domain.PhotoDescriptor, error) {
	params.Validate()

	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result Response
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"query":    params.Term,
				"page":     strconv.Itoa(params.Page),
				"per_page": strconv.Itoa(params.PageSize),
			}).
			SetResult(&result).
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if err := provider.CheckResponse("pexels", r); err != nil {
			return nil, err
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("pexels search failed",
			zap.String("term", params.Term),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("searching pexels: %w", err)
	}

	result := resp.Result().(*Response)
	photos := make([]*domain.PhotoDescriptor, 0, len(result.Photos))

	for i := range result.Photos {
		if result.Photos[i].ID == 0 {
			continue
		}
		photos = append(photos, result.Photos[i].ToDomain())
	}

	c.logger.Info("pexels search completed",
		zap.String("term", params.Term),
		zap.Int("count", len(photos)),
	)

	return photos, nil
}

// HealthCheck verifies the provider is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"query": "nature", "per_page": "1"}).
		Get(Endpoint)
	if err != nil {
		return err
	}
	return provider.CheckResponse("pexels health check", resp)
}
