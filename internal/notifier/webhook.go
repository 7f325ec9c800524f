package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	TitlePlaceholder = "{title}"
	BodyPlaceholder  = "{body}"
)

// URLEndpoint pushes alerts by GETting a URL template, as ServerChan and PushDeer expect.
type URLEndpoint struct {
	name     string
	template string
	client   *resty.Client
	logger   *zap.Logger
}

// NewURLEndpoint creates an endpoint. template must contain {title} and {body}.
func NewURLEndpoint(name, template, proxyURL string, timeout time.Duration, logger *zap.Logger) *URLEndpoint {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &URLEndpoint{
		name:     name,
		template: template,
		client:   newRESTClient(timeout, proxyURL),
		logger:   logger,
	}
}

func (e *URLEndpoint) Name() string { return e.name }

// BuildURL substitutes the query-escaped title and body into the template.
func (e *URLEndpoint) BuildURL(title, body string) string {
	return strings.NewReplacer(
		TitlePlaceholder, url.QueryEscape(title),
		BodyPlaceholder, url.QueryEscape(body),
	).Replace(e.template)
}

type pushReply struct {
	Code  *int `json:"code"`
	Errno *int `json:"errno"`
}

// Send succeeds on HTTP 200. A JSON code or errno is only logged.
func (e *URLEndpoint) Send(ctx context.Context, title, body string) error {
	resp, err := e.client.R().SetContext(ctx).Get(e.BuildURL(title, body))
	if err != nil {
		return fmt.Errorf("%s request: %w", e.name, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%s: status %d, body: %s", e.name, resp.StatusCode(), resp.String())
	}

	var reply pushReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		e.logger.Info("push accepted, reply is not json", zap.String("endpoint", e.name))
		return nil
	}
	switch {
	case (reply.Code != nil && *reply.Code == 0) || (reply.Errno != nil && *reply.Errno == 0):
		e.logger.Info("push confirmed by server", zap.String("endpoint", e.name))
	default:
		e.logger.Warn("push reply reports a problem",
			zap.String("endpoint", e.name),
			zap.String("reply", resp.String()),
		)
	}
	return nil
}

// Target returns the template with its path and query hidden.
func (e *URLEndpoint) Target() string {
	u, err := url.Parse(e.template)
	if err != nil || u.Host == "" {
		return "<invalid url>"
	}
	return u.Scheme + "://" + u.Host + "/..."
}

func newRESTClient(timeout time.Duration, proxyURL string) *resty.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().SetTimeout(timeout).SetRetryCount(0)
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	return c
}
