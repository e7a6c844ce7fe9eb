// Package remotestore содержит тонкий HTTP/JSON-клиент к удалённому REST-хранилищу коллекций.
// Каждый вызов ограничен таймаутом; повторов нет, решение о повторе принимает вызывающий.
package remotestore

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
	"time"

	"github.com/DRSN-tech/gym-ledger/pkg/e"
)

const maxErrorBodySize = 4 << 10

// Observer получает сведения о каждом выполненном запросе (для метрик).
type Observer func(method, collection string, status int, elapsed time.Duration)

// Client выполняет CRUD-запросы к коллекциям удалённого хранилища.
type Client struct {
	baseURL  string
	token    string
	timeout  time.Duration
	http     *http.Client
	observer Observer
}

type Option func(*Client)

// WithToken добавляет заголовок Authorization: Bearer к каждому запросу.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	const defaultTimeout = 10 * time.Second

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// List: GET /{collection}, результат декодируется в out (указатель на срез).
func (c *Client) List(ctx context.Context, collection string, out any) error {
	return c.do(ctx, http.MethodGet, collection, "", nil, out)
}

// Create: POST /{collection}, созданная запись с присвоенным id декодируется в out.
func (c *Client) Create(ctx context.Context, collection string, record any, out any) error {
	return c.do(ctx, http.MethodPost, collection, "", record, out)
}

// Update: PUT /{collection}/{id} с частичным документом patch. out может быть nil.
func (c *Client) Update(ctx context.Context, collection, id string, patch any, out any) error {
	return c.do(ctx, http.MethodPut, collection, id, patch, out)
}

// Delete: DELETE /{collection}/{id}. 404 возвращается как ошибка, совместимая с e.ErrNotFound.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, collection, id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, collection, id string, body any, out any) error {
	path := "/" + url.PathEscape(collection)
	if id != "" {
		path += "/" + url.PathEscape(id)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return e.Wrap(method+" "+path, err)
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return e.Wrap(method+" "+path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, collection, 0, start)
		return fmt.Errorf("%s %s: %w: %v", method, path, e.ErrNetwork, err)
	}
	defer resp.Body.Close()
	c.observe(method, collection, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &e.RemoteError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, e.ErrNetwork, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("%s %s: %w: malformed response: %v", method, path, e.ErrRemote, err)
		}
		return fmt.Errorf("%s %s: %w: %v", method, path, e.ErrRemote, err)
	}

	return nil
}

func (c *Client) observe(method, collection string, status int, start time.Time) {
	if c.observer != nil {
		c.observer(method, collection, status, time.Since(start))
	}
}
