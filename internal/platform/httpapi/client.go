package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/id"
	"vecino/internal/platform/logging"
)

const (
	HeaderRequestID = "X-Request-ID"
	ContentTypeJSON = "application/json"
	Version         = "0.4.0"
)

// HeaderSource yields the authorization headers of the current session.
type HeaderSource interface {
	AuthHeaders(ctx context.Context) (http.Header, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	ids     id.Generator
	logger  hclog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithIDs(g id.Generator) Option {
	return func(c *Client) { c.ids = g }
}

func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		http:    &http.Client{Timeout: timeout},
		ids:     id.UUID{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger)
	return c, nil
}

type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        io.Reader
	ContentType string
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Do performs req and classifies the outcome: transport failures become
// ErrNetwork, 401 becomes ErrUnauthorized, any other non-2xx ErrServer.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.Body)
	if err != nil {
		return Response{}, fmt.Errorf("build request %s %s: %w", req.Method, req.Path, err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", ContentTypeJSON)
	httpReq.Header.Set("User-Agent", "vecino/"+Version)
	requestID := c.ids.New()
	httpReq.Header.Set(HeaderRequestID, requestID)

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "path", req.Path, "request_id", requestID, "error", err)
		return Response{}, &apperrors.RemoteError{Kind: apperrors.ErrNetwork, Cause: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &apperrors.RemoteError{Kind: apperrors.ErrNetwork, Status: resp.StatusCode, Cause: err}
	}
	c.logger.Debug("request done",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(started),
	)
	out := Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
	if err := Classify(resp.StatusCode, body); err != nil {
		return out, err
	}
	return out, nil
}

// DoJSON sends in (when non-nil) as a JSON body and decodes a 2xx response
// into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, header http.Header, in, out any) error {
	req := Request{Method: method, Path: path, Query: query, Header: header}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		req.Body = bytes.NewReader(payload)
		req.ContentType = ContentTypeJSON
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return DecodeJSON(resp, out)
}

// DecodeJSON rejects non-JSON content types and undecodable bodies as
// ErrMalformedResponse.
func DecodeJSON(resp Response, out any) error {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !strings.HasSuffix(mediaType, "json") {
			return &apperrors.RemoteError{Kind: apperrors.ErrMalformedResponse, Status: resp.Status, Detail: "response is not JSON: " + ct}
		}
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &apperrors.RemoteError{Kind: apperrors.ErrMalformedResponse, Status: resp.Status, Cause: err}
	}
	return nil
}

// Classify maps an HTTP status and body onto the error taxonomy. It returns
// nil for 2xx.
func Classify(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	detail, fields := parseErrorBody(body)
	kind := apperrors.ErrServer
	if status == http.StatusUnauthorized {
		kind = apperrors.ErrUnauthorized
	}
	return &apperrors.RemoteError{Kind: kind, Status: status, Detail: detail, Fields: fields}
}

func parseErrorBody(body []byte) (string, map[string][]string) {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", nil
	}
	detail := ""
	if msg, ok := raw["detail"]; ok {
		_ = json.Unmarshal(msg, &detail)
		delete(raw, "detail")
	}
	fields := map[string][]string{}
	for key, value := range raw {
		var many []string
		if err := json.Unmarshal(value, &many); err == nil {
			if len(many) > 0 {
				fields[key] = many
			}
			continue
		}
		var one string
		if err := json.Unmarshal(value, &one); err == nil && one != "" {
			fields[key] = []string{one}
		}
	}
	if len(fields) == 0 {
		fields = nil
	}
	return detail, fields
}
