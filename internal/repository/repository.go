// internal/repository/repository.go
//
// Package repository 將四個帳戶操作轉換為對 /comptes 的 HTTP 請求。
// 主體格式（JSON 或 XML）在建構時固定；切換格式需建立新的 Repository（WithFormat）。
// 每個操作有同步版本（接收 context）與非同步版本（回傳可取消的 *Call）。
// 失敗不重試。
package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"restclient/internal/codec"
	"restclient/internal/compte"
)

// ResourcePath 為固定的資源路徑。
const ResourcePath = "/comptes"

// Repository 為單一格式的 /comptes client。可被多個 goroutine 共用。
type Repository struct {
	base       *url.URL
	codec      codec.Codec
	client     *http.Client
	dispatcher Dispatcher
}

// Option 調整 Repository 的建構參數。
type Option func(*Repository)

// WithHTTPClient 指定 HTTP client（測試時可注入 httptest 的 client）。
func WithHTTPClient(c *http.Client) Option {
	return func(r *Repository) { r.client = c }
}

// WithDispatcher 指定非同步回呼的派送方式；預設為 Immediate。
func WithDispatcher(d Dispatcher) Option {
	return func(r *Repository) { r.dispatcher = d }
}

// New 建立 Repository。baseURL 為伺服器根位址（例如 http://10.0.2.2:8080）。
func New(baseURL string, format codec.Format, opts ...Option) (*Repository, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	r := &Repository{
		base:       u,
		codec:      codec.For(format),
		client:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		dispatcher: Immediate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Format 回傳建構時選定的格式。
func (r *Repository) Format() codec.Format { return r.codec.Format() }

// WithFormat 回傳共用同一 HTTP client 與 Dispatcher 的新 Repository。
func (r *Repository) WithFormat(f codec.Format) *Repository {
	cp := *r
	cp.codec = codec.For(f)
	return &cp
}

// Dispatching 回傳以 d 派送非同步回呼的新 Repository（格式與 HTTP client 不變）。
func (r *Repository) Dispatching(d Dispatcher) *Repository {
	cp := *r
	cp.dispatcher = d
	return &cp
}

// Dispatcher 回傳非同步回呼使用的 Dispatcher。
func (r *Repository) Dispatcher() Dispatcher { return r.dispatcher }

// List 取得伺服器上所有帳戶（GET /comptes）。
func (r *Repository) List(ctx context.Context) ([]compte.Account, error) {
	const op = "list"
	resp, err := r.do(ctx, op, http.MethodGet, ResourcePath, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if !success(resp.StatusCode) {
		return nil, statusError(op, resp, false)
	}
	accounts, err := r.codec.DecodeList(resp.Body)
	if err != nil {
		return nil, newError(ServerError, op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return accounts, nil
}

// Create 新增帳戶（POST /comptes）。a.ID 必須為 nil，否則在送出前即回傳 ValidationError。
func (r *Repository) Create(ctx context.Context, a compte.Account) (compte.Account, error) {
	const op = "create"
	if a.HasID() {
		return compte.Account{}, newError(ValidationError, op, 0, errors.New("new account must not carry an id"))
	}
	if err := a.Validate(); err != nil {
		return compte.Account{}, newError(ValidationError, op, 0, err)
	}
	return r.send(ctx, op, http.MethodPost, ResourcePath, a)
}

// Update 取代指定 id 的帳戶（PUT /comptes/{id}）。
func (r *Repository) Update(ctx context.Context, id int64, a compte.Account) (compte.Account, error) {
	const op = "update"
	if id <= 0 {
		return compte.Account{}, newError(ValidationError, op, 0, fmt.Errorf("invalid id %d", id))
	}
	if err := a.Validate(); err != nil {
		return compte.Account{}, newError(ValidationError, op, 0, err)
	}
	return r.send(ctx, op, http.MethodPut, itemPath(id), a.WithID(id))
}

// Delete 刪除指定 id 的帳戶（DELETE /comptes/{id}）；接受 200 與 204。
func (r *Repository) Delete(ctx context.Context, id int64) error {
	const op = "delete"
	if id <= 0 {
		return newError(ValidationError, op, 0, fmt.Errorf("invalid id %d", id))
	}
	resp, err := r.do(ctx, op, http.MethodDelete, itemPath(id), nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if !success(resp.StatusCode) {
		return statusError(op, resp, true)
	}
	return nil
}

// ListAsync 為 List 的非同步版本。
func (r *Repository) ListAsync(cb func(Result[[]compte.Account])) *Call[[]compte.Account] {
	return start(r.dispatcher, r.List, cb)
}

// CreateAsync 為 Create 的非同步版本。
func (r *Repository) CreateAsync(a compte.Account, cb func(Result[compte.Account])) *Call[compte.Account] {
	return start(r.dispatcher, func(ctx context.Context) (compte.Account, error) {
		return r.Create(ctx, a)
	}, cb)
}

// UpdateAsync 為 Update 的非同步版本。
func (r *Repository) UpdateAsync(id int64, a compte.Account, cb func(Result[compte.Account])) *Call[compte.Account] {
	return start(r.dispatcher, func(ctx context.Context) (compte.Account, error) {
		return r.Update(ctx, id, a)
	}, cb)
}

// DeleteAsync 為 Delete 的非同步版本。
func (r *Repository) DeleteAsync(id int64, cb func(Result[struct{}])) *Call[struct{}] {
	return start(r.dispatcher, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.Delete(ctx, id)
	}, cb)
}

// send 編碼帳戶、送出請求並解碼單一帳戶回應。
func (r *Repository) send(ctx context.Context, op, method, path string, a compte.Account) (compte.Account, error) {
	var body bytes.Buffer
	if err := r.codec.Encode(&body, a); err != nil {
		return compte.Account{}, newError(ValidationError, op, 0, fmt.Errorf("encode request: %w", err))
	}
	resp, err := r.do(ctx, op, method, path, &body)
	if err != nil {
		return compte.Account{}, err
	}
	defer drain(resp)
	if !success(resp.StatusCode) {
		return compte.Account{}, statusError(op, resp, method != http.MethodPost)
	}
	out, err := r.codec.Decode(resp.Body)
	if err != nil {
		return compte.Account{}, newError(ServerError, op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return out, nil
}

func (r *Repository) do(ctx context.Context, op, method, path string, body io.Reader) (*http.Response, error) {
	u := *r.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, newError(NetworkFailure, op, 0, err)
	}
	req.Header.Set("Accept", r.codec.ContentType())
	if body != nil {
		req.Header.Set("Content-Type", r.codec.ContentType())
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, newError(NetworkFailure, op, 0, err)
	}
	return resp, nil
}

func itemPath(id int64) string {
	return ResourcePath + "/" + strconv.FormatInt(id, 10)
}

func success(code int) bool { return code >= 200 && code < 300 }

// statusError 將非 2xx 回應映射為失敗類別；withID 表示請求帶有 id 上下文（404 → NotFound）。
func statusError(op string, resp *http.Response, withID bool) *Error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	cause := errors.New(strings.TrimSpace(string(msg)))
	if len(msg) == 0 {
		cause = errors.New(http.StatusText(resp.StatusCode))
	}
	switch {
	case resp.StatusCode == http.StatusNotFound && withID:
		return newError(NotFound, op, resp.StatusCode, cause)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if op == "create" || op == "update" {
			return newError(ValidationError, op, resp.StatusCode, cause)
		}
	}
	return newError(ServerError, op, resp.StatusCode, cause)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
