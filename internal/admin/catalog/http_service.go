package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	methodOverrideParam = "_method"
	writeContentType    = "text/plain;charset=utf-8"
	maxBodyBytes        = 8 << 20
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPService implements Service against a single spreadsheet web-app URL.
// Writes go out as POST with a text/plain body so the endpoint never sees a
// preflight; PUT and DELETE are expressed through the _method query parameter.
type HTTPService struct {
	endpoint string
	client   HTTPClient
}

// NewHTTPService constructs a Service that talks to the catalog endpoint.
func NewHTTPService(endpoint string, client HTTPClient) (*HTTPService, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("catalog: endpoint URL is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("catalog: parse endpoint URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{
		endpoint: endpoint,
		client:   client,
	}, nil
}

// List retrieves all rows and normalizes them in order.
func (s *HTTPService) List(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	setNoCache(req)

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("catalog: read list response: %w", err)
	}
	if !statusOK(resp.StatusCode) {
		msg := plainText(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &ProtocolError{Status: resp.StatusCode, Message: msg}
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, &ProtocolError{Status: resp.StatusCode, Message: err.Error()}
	}

	products := make([]Product, 0, len(records))
	for i, rec := range records {
		products = append(products, Normalize(rec, i))
	}
	return products, nil
}

// Create appends a new row built from draft.
func (s *HTTPService) Create(ctx context.Context, draft Draft) (Envelope, error) {
	payload := draft.Record()
	resolveImageField(payload)
	return s.write(ctx, "", payload)
}

// Update overwrites the set fields on the row keyed by businessKey.
func (s *HTTPService) Update(ctx context.Context, businessKey string, changes Changes) (Envelope, error) {
	updates := changes.Record()
	resolveImageField(updates)
	payload := map[string]any{
		FieldTitle: businessKey,
		"updates":  updates,
	}
	return s.write(ctx, http.MethodPut, payload)
}

// Delete removes the row keyed by businessKey.
func (s *HTTPService) Delete(ctx context.Context, businessKey string) (Envelope, error) {
	payload := map[string]any{FieldTitle: businessKey}
	return s.write(ctx, http.MethodDelete, payload)
}

func (s *HTTPService) write(ctx context.Context, override string, payload any) (Envelope, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return Envelope{}, fmt.Errorf("catalog: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.writeURL(override), &buf)
	if err != nil {
		return Envelope{}, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Content-Type", writeContentType)
	setNoCache(req)

	resp, err := s.do(req)
	if err != nil {
		return Envelope{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Envelope{}, fmt.Errorf("catalog: read write response: %w", err)
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		env = Envelope{OK: false, Error: plainText(string(body))}
	}
	if !statusOK(resp.StatusCode) || !env.OK {
		return env, newRemoteError(resp.StatusCode, env.Error)
	}
	return env, nil
}

func (s *HTTPService) writeURL(override string) string {
	if override == "" {
		return s.endpoint
	}
	sep := "?"
	if strings.Contains(s.endpoint, "?") {
		sep = "&"
	}
	return s.endpoint + sep + methodOverrideParam + "=" + override
}

func (s *HTTPService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request failed: %w", err)
	}
	return resp, nil
}

func setNoCache(req *http.Request) {
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
}

func resolveImageField(rec Record) {
	raw, ok := rec[FieldImage].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}
	rec[FieldImage] = ResolveImage(raw)
}

// decodeRecords accepts either a JSON array or a JSON string holding one.
func decodeRecords(body []byte) ([]Record, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if s, ok := raw.(string); ok {
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.New("expected a JSON array")
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			obj = map[string]any{}
		}
		records = append(records, Record(obj))
	}
	return records, nil
}

func decodeEnvelope(body []byte) (Envelope, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return Envelope{}, err
	}
	env := Envelope{Fields: fields}
	if ok, isBool := fields["ok"].(bool); isBool {
		env.OK = ok
	}
	if msg, isString := fields["error"].(string); isString {
		env.Error = msg
	}
	return env, nil
}
