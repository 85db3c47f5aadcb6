// Package remote talks to the character persistence endpoint over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/charsheet/internal/platform/errors"
	"github.com/louisbranch/charsheet/internal/services/sheet/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/louisbranch/charsheet/internal/services/sheet/remote"

	// errorBodyLimit caps how much of a failed response is kept for logs.
	errorBodyLimit = 4096
	// responseLimit caps a successful response body.
	responseLimit = 1 << 20
)

// Client reads and writes the single character document.
type Client struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	logger   *log.Logger
	tracer   trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger for failed responses.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for an absolute http or https endpoint URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: scheme must be http or https", endpoint)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("remote url %q: host is required", endpoint)
	}

	c := &Client{
		endpoint: endpoint,
		client:   http.DefaultClient,
		logger:   log.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch GETs the stored document. A response without a body object fails.
func (c *Client) Fetch(ctx context.Context) (domain.Document, error) {
	ctx, span := c.tracer.Start(ctx, "remote.Fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var envelope domain.Envelope
	err := c.do(ctx, span, http.MethodGet, nil, func(body io.Reader) error {
		if err := json.NewDecoder(body).Decode(&envelope); err != nil {
			return apperrors.Wrap(apperrors.CodeRemoteDecode, "decode character response", err)
		}
		if envelope.Body == nil {
			return apperrors.New(apperrors.CodeRemoteDecode, "character response has no body")
		}
		return nil
	})
	if err != nil {
		recordError(span, err)
		return domain.Document{}, err
	}
	return *envelope.Body, nil
}

// Save POSTs doc as JSON.
func (c *Client) Save(ctx context.Context, doc domain.Document) error {
	ctx, span := c.tracer.Start(ctx, "remote.Save", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	payload, err := json.Marshal(doc)
	if err != nil {
		recordError(span, err)
		return fmt.Errorf("encode character: %w", err)
	}
	err = c.do(ctx, span, http.MethodPost, payload, func(body io.Reader) error {
		_, err := io.Copy(io.Discard, body)
		return err
	})
	if err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, span trace.Span, method string, payload []byte, read func(io.Reader) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", c.endpoint),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, fmt.Sprintf("%s %s", method, c.endpoint), err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		bodyStr := strings.TrimSpace(string(rb))
		c.logger.Printf("remote %s error endpoint=%s status=%d body=%q", method, c.endpoint, resp.StatusCode, bodyStr)
		return apperrors.WithMetadata(
			apperrors.CodeRemoteStatus,
			fmt.Sprintf("%s %s: status %d", method, c.endpoint, resp.StatusCode),
			map[string]string{"Status": strconv.Itoa(resp.StatusCode)},
		)
	}
	return read(io.LimitReader(resp.Body, responseLimit))
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
