package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"posterminal/internal/config"
	"posterminal/internal/domain"
	"posterminal/internal/dto"
	apperrors "posterminal/internal/errors"
)

const (
	OpListProducts       = "list_products"
	OpListStockBalances  = "list_stock_balances"
	OpListStockMovements = "list_stock_movements"
	OpPostAdjustment     = "post_adjustment"
	OpPostTransfer       = "post_transfer"
	OpPostCheckout       = "post_checkout"
)

const maxBodyBytes = 8 << 20

type Recorder interface {
	RecordBackendRequest(operation string, success bool, duration time.Duration)
	SetCircuitBreakerState(name string, state int)
}

type nopRecorder struct{}

func (nopRecorder) RecordBackendRequest(string, bool, time.Duration) {}
func (nopRecorder) SetCircuitBreakerState(string, int)               {}

// Client talks to the inventory/sales backend over HTTP/JSON. Every call
// goes through one circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	recorder   Recorder
	logger     *zap.Logger
}

func NewClient(cfg config.BackendConfig, logger *zap.Logger, recorder Recorder) *Client {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker:  newBreaker(cfg.Breaker, logger, recorder),
		recorder: recorder,
		logger:   logger,
	}
}

func (c *Client) ListProducts(ctx context.Context, query dto.ProductQuery) ([]domain.Product, error) {
	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Name != "" {
		params.Set("name", query.Name)
	}

	body, err := c.do(ctx, OpListProducts, http.MethodGet, "/products", params, nil)
	if err != nil {
		return nil, err
	}

	payloads, err := DecodeList[dto.ProductPayload](body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpListProducts, err)
	}

	products := make([]domain.Product, len(payloads))
	for i, p := range payloads {
		products[i] = p.ToDomain()
	}
	return products, nil
}

func (c *Client) ListStockBalances(ctx context.Context) ([]domain.StockBalance, error) {
	body, err := c.do(ctx, OpListStockBalances, http.MethodGet, "/stock/balances", nil, nil)
	if err != nil {
		return nil, err
	}

	balances, err := DecodeList[domain.StockBalance](body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpListStockBalances, err)
	}
	return balances, nil
}

func (c *Client) ListStockMovements(ctx context.Context) ([]domain.StockMove, error) {
	body, err := c.do(ctx, OpListStockMovements, http.MethodGet, "/stock/movements", nil, nil)
	if err != nil {
		return nil, err
	}

	moves, err := DecodeList[domain.StockMove](body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpListStockMovements, err)
	}
	return moves, nil
}

func (c *Client) PostAdjustment(ctx context.Context, req domain.AdjustmentRequest) (*dto.AdjustmentResult, error) {
	body, err := c.do(ctx, OpPostAdjustment, http.MethodPost, "/stock/adjustments", nil, dto.NewAdjustmentPayload(req))
	if err != nil {
		return nil, err
	}

	var result dto.AdjustmentResult
	if err := decodeObject(body, &result); err != nil {
		return nil, apperrors.NewServerError(OpPostAdjustment, 0, "malformed response: "+err.Error())
	}
	if result.Failed() {
		return nil, apperrors.NewServerError(OpPostAdjustment, 0, rejection(result.Message))
	}
	return &result, nil
}

func (c *Client) PostTransfer(ctx context.Context, req domain.TransferRequest) (*dto.TransferResult, error) {
	body, err := c.do(ctx, OpPostTransfer, http.MethodPost, "/stock/transfers", nil, dto.NewTransferPayload(req))
	if err != nil {
		return nil, err
	}

	var result dto.TransferResult
	if err := decodeObject(body, &result); err != nil {
		return nil, apperrors.NewServerError(OpPostTransfer, 0, "malformed response: "+err.Error())
	}
	if result.Failed() {
		return nil, apperrors.NewServerError(OpPostTransfer, 0, rejection(result.Message))
	}
	return &result, nil
}

func (c *Client) PostCheckout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResult, error) {
	body, err := c.do(ctx, OpPostCheckout, http.MethodPost, "/checkout", nil, req)
	if err != nil {
		return nil, err
	}

	var result dto.CheckoutResult
	if err := decodeObject(body, &result); err != nil {
		return nil, apperrors.NewServerError(OpPostCheckout, 0, "malformed response: "+err.Error())
	}
	if result.Success != nil && !*result.Success {
		return nil, apperrors.NewServerError(OpPostCheckout, 0, rejection(result.Message))
	}
	if result.OrderID == "" {
		return nil, apperrors.NewServerError(OpPostCheckout, 0, "response carried no orderId")
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	start := time.Now()

	// A caller that has already gone away never reaches the breaker.
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTransportError(op, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, op, method, path, query, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("backend call rejected by circuit breaker", zap.String("operation", op))
		err = apperrors.NewTransportError(op, err)
	}

	c.recorder.RecordBackendRequest(op, err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.NewInternalError(op+": encoding request", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, apperrors.NewInternalError(op+": building request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewTransportError(op, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewServerError(op, resp.StatusCode, errorMessage(body))
	}

	return body, nil
}

func decodeObject(body []byte, dst any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] != '{' {
		return ErrUnexpectedShape
	}
	return json.Unmarshal(trimmed, dst)
}

func rejection(message string) string {
	if message == "" {
		return "request rejected"
	}
	return message
}
