package infra

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

	"storefront/internal/domain"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// APIError is a non-2xx answer from the store API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store API returned status %d", e.Status)
	}
	return fmt.Sprintf("store API returned status %d: %s", e.Status, e.Message)
}

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

type StoreClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewStoreClient(baseURL string, timeout time.Duration) *StoreClient {
	return &StoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *StoreClient) GetProducts(ctx context.Context) (*domain.ProductList, error) {
	var list domain.ProductList
	if err := c.do(ctx, http.MethodGet, "/product", nil, &list); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return &list, nil
}

func (c *StoreClient) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error) {
	var res domain.OrderResult
	if err := c.do(ctx, http.MethodPost, "/order", req, &res); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &res, nil
}

func (c *StoreClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
