// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apiclient is a thin client for the mailcraft HTTP JSON API.
// The bearer token is read from an injected credential.Slot before every
// authenticated request; a 401 on such a request clears the slot.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"mailcraft/internal/credential"
	"mailcraft/internal/models"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 10 << 20

// Client talks to the mailcraft API.
type Client struct {
	baseURL string
	http    *http.Client
	creds   credential.Slot
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL (for example
// "http://localhost:8080/api").
func New(baseURL string, creds credential.Slot, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		creds:   creds,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials returns the slot the client reads its token from.
func (c *Client) Credentials() credential.Slot { return c.creds }

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	User models.User `json:"user"`
}

// Register creates an account. The returned token is not stored; callers
// decide whether to keep it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	req := registerRequest{Name: name, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &out, false, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token. The token is not stored.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	req := loginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &out, false, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves the identity behind the stored token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out meResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &out, true, false); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout revokes the stored token on the server. It does not touch the
// local slot.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, true, false)
}

// --- Templates ---

// ListTemplates returns the caller's templates in store order.
func (c *Client) ListTemplates(ctx context.Context) ([]models.TemplateDocument, error) {
	var out []models.TemplateDocument
	if err := c.doJSON(ctx, http.MethodGet, "/templates", nil, &out, true, false); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTemplate persists doc and returns the stored copy carrying its
// server-assigned id, owner and timestamps.
func (c *Client) CreateTemplate(ctx context.Context, doc *models.TemplateDocument) (*models.TemplateDocument, error) {
	var out models.TemplateDocument
	if err := c.doJSON(ctx, http.MethodPost, "/template", doc, &out, true, false); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &Error{Status: http.StatusOK, Message: "response carried no template id", kind: ErrServer}
	}
	return &out, nil
}

// GetTemplate fetches a single template by id.
func (c *Client) GetTemplate(ctx context.Context, id string) (*models.TemplateDocument, error) {
	var out models.TemplateDocument
	if err := c.doJSON(ctx, http.MethodGet, "/template/"+url.PathEscape(id), nil, &out, true, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTemplate removes a template. Deleting an absent id yields ErrNotFound.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/email/template/"+url.PathEscape(id), nil, nil, true, false)
}

// RenderURL returns the address of the rendered HTML for a template.
func (c *Client) RenderURL(id string) string {
	return c.baseURL + "/template/" + url.PathEscape(id) + "/render"
}

// RenderTemplate fetches the rendered HTML of a template.
func (c *Client) RenderTemplate(ctx context.Context, id string) ([]byte, error) {
	body, _, err := c.doRaw(ctx, http.MethodGet, "/template/"+url.PathEscape(id)+"/render", nil, "")
	return body, err
}

// DownloadTemplate fetches the rendered HTML as an attachment and returns
// the filename suggested by the server.
func (c *Client) DownloadTemplate(ctx context.Context, id string) ([]byte, string, error) {
	body, header, err := c.doRaw(ctx, http.MethodGet, "/template/"+url.PathEscape(id)+"/download", nil, "")
	if err != nil {
		return nil, "", err
	}

	filename := "template-" + id + ".html"
	if _, params, perr := mime.ParseMediaType(header.Get("Content-Disposition")); perr == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return body, filename, nil
}

// --- Images ---

type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// UploadImage sends an image as multipart field "image" and returns the
// public URL the server stored it under.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte, mimeType string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("apiclient multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("apiclient multipart write: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("apiclient multipart close: %w", err)
	}

	body, _, err := c.doRaw(ctx, http.MethodPost, "/email/upload-image", &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}

	var out uploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &Error{Status: http.StatusOK, Message: "decode upload response: " + err.Error(), kind: ErrServer}
	}
	if out.ImageURL == "" {
		return "", &Error{Status: http.StatusOK, Message: "upload response carried no imageUrl", kind: ErrServer}
	}
	return out.ImageURL, nil
}

// --- transport ---

// doJSON sends an optional JSON body and decodes a JSON response into out
// (skipped when out is nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, authed, authEndpoint bool) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("apiclient marshal: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	respBody, _, err := c.send(ctx, method, path, body, contentType, authed, authEndpoint)
	if err != nil {
		return err
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Status: http.StatusOK, Message: "decode response: " + err.Error(), kind: ErrServer}
	}
	return nil
}

// doRaw performs an authenticated request and returns the raw body.
func (c *Client) doRaw(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, http.Header, error) {
	return c.send(ctx, method, path, body, contentType, true, false)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, authed, authEndpoint bool) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("apiclient request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	// The token is read once per request so a concurrent clear cannot
	// change which token this request is judged by.
	var token string
	if authed {
		token = c.creds.Token()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "error", err)
		return nil, nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s %s: %w", ErrNetwork, method, path, err)
	}

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, resp.Header, nil
	}

	apiErr := &Error{Status: resp.StatusCode, kind: classify(resp.StatusCode, authEndpoint)}
	var eb errorBody
	if json.Unmarshal(respBody, &eb) == nil {
		apiErr.Message = eb.Message
		apiErr.Details = eb.Errors
	}

	if apiErr.kind == ErrSessionExpired && token != "" {
		if cleared, cerr := c.creds.ClearIf(token); cerr != nil {
			c.logger.Warn("failed to clear rejected credential", "error", cerr)
		} else if cleared {
			c.logger.Info("stored credential rejected by server, cleared")
		}
	}

	return nil, nil, apiErr
}
