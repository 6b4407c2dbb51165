package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"seatview/model"
)

const (
	defaultUserAgent   = "seatview/1.0"
	defaultTimeout     = 5 * time.Second
	defaultMaxAttempts = 2
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 800 * time.Millisecond
	errorBodyLimit     = 8 << 10
	tracerName         = "seatview/service"
)

// Client wraps HTTP access to a seat booking server.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
	tracer      trace.Tracer
}

// NewClient creates a client for the server at baseURL. If httpClient is nil, a default client is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
		tracer:      otel.Tracer(tracerName),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetSeats fetches the full seat collection.
func (c *Client) GetSeats(ctx context.Context) (model.Seats, error) {
	ctx, span := c.tracer.Start(ctx, "GetSeats", trace.WithAttributes(
		attribute.String("seatview.server", c.baseURL),
	))
	defer span.End()

	endpoint := c.baseURL + "/seats"
	var seats model.Seats
	if err := c.getJSON(ctx, endpoint, "GET /seats", &seats); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get seats failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("seatview.seats", len(seats)))
	return seats, nil
}

// BookSeat asks the server to book seatID. Bookings are sent once and never retried.
func (c *Client) BookSeat(ctx context.Context, seatID string) (model.BookingResult, error) {
	if seatID == "" {
		return model.BookingResult{}, errors.New("seat id is required")
	}
	ctx, span := c.tracer.Start(ctx, "BookSeat", trace.WithAttributes(
		attribute.String("seatview.server", c.baseURL),
		attribute.String("seatview.seat_id", seatID),
	))
	defer span.End()

	endpoint := fmt.Sprintf("%s/book/%s", c.baseURL, url.PathEscape(seatID))
	var result model.BookingResult
	if _, err := c.send(ctx, http.MethodPost, endpoint, "POST /book/{id}", &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "book seat failed")
		return model.BookingResult{}, err
	}
	if result.Message == "" {
		err := &DecodeError{Endpoint: endpoint, Err: errors.New("response has no message")}
		span.RecordError(err)
		span.SetStatus(codes.Error, "book seat failed")
		return model.BookingResult{}, err
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, route string, out any) error {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retry, err := c.send(ctx, http.MethodGet, endpoint, route, out)
		if err == nil {
			return nil
		}
		if !retry || attempt == maxAttempts {
			return err
		}
		if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
			return waitErr
		}
	}

	return errors.New("request failed after retries")
}

// send performs a single HTTP exchange and reports whether a failure is worth retrying.
func (c *Client) send(ctx context.Context, method string, endpoint string, route string, out any) (bool, error) {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", endpoint),
			attribute.String("http.request_id", requestID),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return c.shouldRetryNetworkError(err), &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer res.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
		apiErr := &APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(snippet)),
			Message:    messageFromBody(snippet),
		}
		span.SetStatus(codes.Error, res.Status)
		return c.shouldRetryStatus(res.StatusCode), apiErr
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		if ctx.Err() != nil {
			return false, &NetworkError{Endpoint: endpoint, Err: err}
		}
		return false, &DecodeError{Endpoint: endpoint, Err: err}
	}
	return false, nil
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	delay := c.retryDelay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	cap := c.retryCap
	if cap <= 0 {
		cap = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= cap/2 {
			return cap
		}
		delay *= 2
	}
	if delay > cap {
		return cap
	}
	return delay
}
