package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

const maxErrorBody = 4 << 10

// IPFSConfig configures the Kubo RPC client.
type IPFSConfig struct {
	// APIURL is the Kubo RPC endpoint, e.g. http://127.0.0.1:5001.
	APIURL string
	// Token is sent as a bearer token when set, as pinning gateways require.
	Token   string
	Timeout time.Duration
}

// IPFSStore pins content through the Kubo HTTP RPC API.
type IPFSStore struct {
	endpoint *url.URL
	token    string
	client   *http.Client
	logger   *zap.Logger
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

type rpcError struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
	Type    string `json:"Type"`
}

func NewIPFSStore(cfg IPFSConfig, logger *zap.Logger) (*IPFSStore, error) {
	endpoint, err := url.Parse(strings.TrimRight(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ipfs api url: %w", err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("ipfs api url %q must be absolute", cfg.APIURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &IPFSStore{
		endpoint: endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("ipfs_store"),
	}, nil
}

func (s *IPFSStore) Put(ctx context.Context, data []byte, contentType string) (model.Locator, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="blob"`},
		"Content-Type":        {contentTypeOrDefault(contentType)},
	})
	if err != nil {
		return "", fmt.Errorf("build ipfs request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build ipfs request: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build ipfs request: %w", err)
	}

	query := url.Values{}
	query.Set("pin", "true")
	query.Set("cid-version", "1")
	query.Set("raw-leaves", "true")
	resp, err := s.call(ctx, "add", query, &body, form.FormDataContentType())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var added addResponse
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		return "", fmt.Errorf("%w: decode ipfs add response: %v", model.ErrStoreUnavailable, err)
	}
	locator, err := ParseLocator(added.Hash)
	if err != nil {
		return "", fmt.Errorf("%w: ipfs returned malformed cid %q", model.ErrStoreRejected, added.Hash)
	}

	s.logger.Debug("content pinned", zap.String("cid", string(locator)), zap.Int("size", len(data)))
	return locator, nil
}

func (s *IPFSStore) Get(ctx context.Context, locator model.Locator) ([]byte, error) {
	query := url.Values{}
	query.Set("arg", string(locator))
	resp, err := s.call(ctx, "cat", query, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read ipfs cat response: %v", model.ErrStoreUnavailable, err)
	}
	return data, nil
}

func (s *IPFSStore) call(ctx context.Context, command string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	target := s.endpoint.JoinPath("api", "v0", command)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build ipfs request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(model.ErrStoreUnavailable, ctxErr)
		}
		return nil, fmt.Errorf("%w: ipfs %s: %v", model.ErrStoreUnavailable, command, err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := strings.TrimSpace(string(raw))
	var rpcErr rpcError
	if json.Unmarshal(raw, &rpcErr) == nil && rpcErr.Message != "" {
		message = rpcErr.Message
	}
	return nil, classifyIPFSStatus(command, resp.StatusCode, message)
}

func classifyIPFSStatus(command string, status int, message string) error {
	switch {
	case status == http.StatusPaymentRequired,
		status == http.StatusRequestEntityTooLarge,
		status == http.StatusInsufficientStorage,
		strings.Contains(strings.ToLower(message), "quota"):
		return fmt.Errorf("%w: ipfs %s: %d %s", model.ErrQuotaExceeded, command, status, message)
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: ipfs %s: %d %s", model.ErrStoreUnavailable, command, status, message)
	default:
		return fmt.Errorf("%w: ipfs %s: %d %s", model.ErrStoreRejected, command, status, message)
	}
}

func contentTypeOrDefault(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
