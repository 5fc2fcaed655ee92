package squashlevels

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/omarshaarawi/squashbot/internal/models"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultBaseURL = "https://api.leveltech.squashlevels.com"

	loginEndpoint  = "/api/classic/menu_login"
	playerEndpoint = "/api/classic/player_detail"

	loginReferer = "https://www.squashlevels.com/"
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Logged response bodies are cut to this many bytes.
	maxLoggedBody = 512
)

var (
	ErrTransport         = errors.New("squashlevels: transport error")
	ErrMalformedResponse = errors.New("squashlevels: malformed response")
)

// formBoundary is fixed for the lifetime of the process.
var formBoundary = "----WebKitFormBoundary" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second, Jar: jar},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Close releases pooled connections. The session cookies are dropped with the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Login posts the login form. A rejected login is not an error here: the
// server answers with some status and body which are only logged, and the
// session stays anonymous.
func (c *Client) Login(ctx context.Context, creds models.Credentials) error {
	body, err := loginBody(creds)
	if err != nil {
		return fmt.Errorf("error building login form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginEndpoint, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+formBoundary)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: error making login request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	if err != nil {
		slog.Warn("Error reading login response", "error", err)
	}
	slog.Info("Login response", "status", resp.StatusCode, "body", string(respBody))

	return nil
}

func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	q := req.URL.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: error making request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status code: %d", ErrTransport, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("%w: error decoding response: %w", ErrMalformedResponse, err)
	}

	return nil
}

func loginBody(creds models.Credentials) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(formBoundary); err != nil {
		return nil, err
	}

	fields := [][2]string{
		{"stay_logged_in", "1"},
		{"action", "login"},
		{"referer", loginReferer},
		{"email", creds.Username},
		{"password", "Use MD5"},
		{"md5password", md5Hex(creds.Password)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	req.Header.Set("Origin", strings.TrimSuffix(loginReferer, "/"))
	req.Header.Set("Referer", loginReferer)
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-site")
}
