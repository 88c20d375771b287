package deviceclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/daikin-humid/internal/logging"
	"github.com/muurk/daikin-humid/internal/protocol"
	"github.com/muurk/daikin-humid/internal/version"
)

const (
	// DefaultTimeout bounds every device call, including reading the body.
	DefaultTimeout = 10 * time.Second
)

// Endpoint paths served by the device.
const (
	PathBasicInfo   = "/common/basic_info"
	PathModelInfo   = "/cleaner/get_model_info"
	PathControlInfo = "/cleaner/get_control_info"
	PathSetControl  = "/cleaner/set_control_info"
	PathSensorInfo  = "/cleaner/get_sensor_info"
	PathUnitStatus  = "/cleaner/get_unit_status"
)

// Client talks to one device over plain HTTP.
//
// The *http.Client is shared with the caller and never closed here. A Client
// makes exactly one request per call and never retries.
type Client struct {
	host       string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request and response tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(l)
	}
}

// WithTimeout overrides the per-call timeout. Non-positive values are
// ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header. An empty value sends no
// header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the device at host ("192.168.1.40" or
// "192.168.1.40:80"). A host given with an http:// prefix is used as is.
// When httpClient is nil a private client with DefaultTimeout is used; it
// refuses redirects with ErrRedirect.
func NewClient(host string, httpClient *http.Client, opts ...Option) *Client {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	baseURL := host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		baseURL = "http://" + host
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return ErrRedirect
			},
		}
	}

	c := &Client{
		host:       strings.TrimPrefix(strings.TrimPrefix(host, "http://"), "https://"),
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    DefaultTimeout,
		userAgent:  version.UserAgent(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the device address the client was created for.
func (c *Client) Host() string {
	return c.host
}

// GetBasicInfo reads /common/basic_info.
func (c *Client) GetBasicInfo(ctx context.Context) (protocol.Response, error) {
	return c.get(ctx, PathBasicInfo, "")
}

// GetModelInfo reads /cleaner/get_model_info.
func (c *Client) GetModelInfo(ctx context.Context) (protocol.Response, error) {
	return c.get(ctx, PathModelInfo, "")
}

// GetControlInfo reads /cleaner/get_control_info.
func (c *Client) GetControlInfo(ctx context.Context) (protocol.Response, error) {
	return c.get(ctx, PathControlInfo, "")
}

// GetSensorInfo reads /cleaner/get_sensor_info.
func (c *Client) GetSensorInfo(ctx context.Context) (protocol.Response, error) {
	return c.get(ctx, PathSensorInfo, "")
}

// GetUnitStatus reads /cleaner/get_unit_status.
func (c *Client) GetUnitStatus(ctx context.Context) (protocol.Response, error) {
	return c.get(ctx, PathUnitStatus, "")
}

// SetControlInfo sends the present fields of cmd to
// /cleaner/set_control_info. An empty command is still sent, without a query
// string, and changes nothing on the device.
func (c *Client) SetControlInfo(ctx context.Context, cmd ControlCommand) (protocol.Response, error) {
	query := protocol.Serialize(cmd.Fields()).Encode()
	c.logger.Info("Setting control info",
		zap.String("host", c.host),
		zap.String("command", query),
	)
	return c.get(ctx, PathSetControl, query)
}

// Probe checks that host is a reachable device and returns its identity.
func (c *Client) Probe(ctx context.Context) (BasicInfo, error) {
	resp, err := c.GetBasicInfo(ctx)
	if err != nil {
		return BasicInfo{}, err
	}
	return BasicInfoFrom(resp), nil
}

// get performs one bounded GET and parses the body.
func (c *Client) get(ctx context.Context, path, rawQuery string) (protocol.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return protocol.Response{}, newProtocolFault("failed to create request", err, c.host, path)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("Device request", logging.RequestFields(req.Method, target)...)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fault := ClassifyTransportError(err, c.host, path)
		c.logger.Debug("Device request failed", zap.String("path", path), zap.Error(fault))
		return protocol.Response{}, fault
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return protocol.Response{}, newAuthFault(resp.StatusCode, c.host, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return protocol.Response{}, newStatusFault(resp.StatusCode, c.host, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return protocol.Response{}, newReadFault(err, c.host, path)
	}

	c.logger.Debug("Device response", logging.ResponseFields(resp.StatusCode, body)...)

	return protocol.Parse(string(body)), nil
}
