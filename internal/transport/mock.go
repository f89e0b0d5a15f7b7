package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
)

// MockClient provides a mock transport for testing.
type MockClient struct {
	mu sync.Mutex

	// Responses are keyed by "METHOD path". Values are marshaled into the
	// caller's out parameter.
	Responses map[string]interface{}

	// Errors are keyed the same way and take precedence over Responses.
	Errors map[string]error

	// PerToken overrides a response for a specific token, keyed by
	// "METHOD path|token".
	PerToken map[string]interface{}

	// Request tracking
	Requests []MockRequest
}

// MockRequest tracks one call.
type MockRequest struct {
	Method string
	Base   string
	Path   string
	Query  url.Values
	Form   url.Values
	Token  string
}

// NewMockClient creates a mock transport.
func NewMockClient() *MockClient {
	return &MockClient{
		Responses: make(map[string]interface{}),
		Errors:    make(map[string]error),
		PerToken:  make(map[string]interface{}),
	}
}

// GetJSON mocks a GET.
func (m *MockClient) GetJSON(ctx context.Context, base, path string, query url.Values, token string, out interface{}) error {
	return m.record("GET", base, path, query, nil, token, out)
}

// PostForm mocks a POST.
func (m *MockClient) PostForm(ctx context.Context, base, path string, form url.Values, token string, out interface{}) error {
	return m.record("POST", base, path, nil, form, token, out)
}

// Put mocks a PUT.
func (m *MockClient) Put(ctx context.Context, base, path string, query url.Values, token string) error {
	return m.record("PUT", base, path, query, nil, token, nil)
}

func (m *MockClient) record(method, base, path string, query, form url.Values, token string, out interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, MockRequest{
		Method: method,
		Base:   base,
		Path:   path,
		Query:  query,
		Form:   form,
		Token:  token,
	})

	key := method + " " + path
	if err, ok := m.Errors[key]; ok {
		return err
	}

	resp, ok := m.PerToken[key+"|"+token]
	if !ok {
		resp, ok = m.Responses[key]
	}
	if !ok {
		return fmt.Errorf("no mock response for %s", key)
	}
	if out == nil {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal mock response: %w", err)
	}
	return json.Unmarshal(data, out)
}

// RequestsFor returns recorded requests matching method and path.
func (m *MockClient) RequestsFor(method, path string) []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []MockRequest
	for _, r := range m.Requests {
		if r.Method == method && r.Path == path {
			matched = append(matched, r)
		}
	}
	return matched
}
