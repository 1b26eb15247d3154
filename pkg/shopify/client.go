package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/valorin/storefront-backend/config"
	"github.com/valorin/storefront-backend/pkg/logger"
)

// Client is a Shopify Storefront API GraphQL client.
type Client struct {
	endpoint     string
	token        string
	retryBackoff time.Duration
	httpClient   *http.Client
}

// NewClient creates a new Storefront API client from configuration.
func NewClient(cfg config.ShopifyConfig) (*Client, error) {
	if cfg.StoreDomain == "" || cfg.APIVersion == "" {
		return nil, ErrInvalidConfig
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Client{
		endpoint:     cfg.StorefrontURL(),
		token:        cfg.StorefrontToken,
		retryBackoff: backoff,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// graphqlRequest is the JSON envelope the Storefront API accepts.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// execute posts a GraphQL document and decodes the data payload into out.
// Mutations pass retry=true to get a single retry with backoff on transport
// failure; queries are issued once.
func (c *Client) execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}, retry bool) error {
	data, err := c.post(ctx, query, variables)
	if err != nil {
		if !retry || !isRetryable(err) {
			return err
		}
		logger.Warn("Storefront request failed, retrying once", map[string]interface{}{
			"backoff": c.retryBackoff.String(),
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrNetwork, ctx.Err())
		case <-time.After(c.retryBackoff):
		}
		data, err = c.post(ctx, query, variables)
		if err != nil {
			return err
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode storefront response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error) {
	reqBody, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	// 402 is Shopify's signal that the shop's billing plan lapsed. It needs
	// its own user-facing message, so it gets its own error.
	if resp.StatusCode == http.StatusPaymentRequired {
		return nil, ErrBackendUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d: %s", ErrNetwork, resp.StatusCode, string(body))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storefront response: %w, body: %s", err, string(body))
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("storefront API error: %s", strings.Join(msgs, "; "))
	}

	return gqlResp.Data, nil
}

func isRetryable(err error) bool {
	// Billing outages and rejected input do not get better on retry.
	return errors.Is(err, ErrNetwork) && !errors.Is(err, ErrBackendUnavailable)
}
