package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"golang.org/x/exp/slog"

	"wesync/internal/app/client/config"
	"wesync/internal/domain/notice"
)

var ErrNoUsername = errors.New("username is not configured")

// APIError ответ сервера с кодом ошибки
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Detail)
}

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	noticeURL string
	username  string
	version   string
	userAgent string
}

func newHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		log:       log,
		baseURL:   cfg.BaseURL(),
		noticeURL: cfg.NoticeURL(),
		username:  cfg.Username,
		version:   cfg.Version,
		userAgent: "WeSync-Client/" + cfg.Version,
	}
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("server unavailable: %w", err)
	}
	defer resp.Body.Close()
	return h.parseResponse(resp, nil)
}

// Command отправляет команду протокола и раскладывает ответ в out.
// Ответ 204 оставляет out нетронутым.
func (h *httpClient) Command(ctx context.Context, name string, body any, out any) error {
	if h.username == "" {
		return ErrNoUsername
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", name, err)
	}

	url := h.baseURL + "/api/wesync/" + h.version + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.username)
	req.Header.Set("User-Agent", h.userAgent)

	h.log.Debug("sending command", "command", name, "bytes", len(data))
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", name, err)
	}
	defer resp.Body.Close()
	return h.parseResponse(resp, out)
}

func (h *httpClient) parseResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var problem struct {
			Detail string `json:"detail"`
		}
		if data, err := io.ReadAll(resp.Body); err == nil && json.Unmarshal(data, &problem) == nil {
			apiErr.Detail = problem.Detail
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Listen держит websocket уведомлений и вызывает fn на каждое уведомление до отмены ctx
func (h *httpClient) Listen(ctx context.Context, fn func(*notice.Notice)) error {
	if h.username == "" {
		return ErrNoUsername
	}
	conn, _, err := websocket.Dial(ctx, h.noticeURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": {"Bearer " + h.username}},
	})
	if err != nil {
		return fmt.Errorf("failed to connect notices: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notice stream closed: %w", err)
		}
		var n notice.Notice
		if err := json.Unmarshal(data, &n); err != nil {
			h.log.Warn("malformed notice skipped", "error", err)
			continue
		}
		fn(&n)
	}
}
