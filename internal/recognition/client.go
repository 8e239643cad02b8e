package recognition

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"face-attendance/internal/shared/contextutil"

	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultThreshold = 0.7
)

type Config struct {
	BaseURL     string
	Path        string
	Timeout     time.Duration // per attempt
	APIKey      string
	BearerToken string
	// Confidence must be strictly greater than Threshold to count as recognized.
	Threshold float64
}

//go:generate mockgen -source=client.go -destination=mock/client_mock.go -package=mock
type Recognizer interface {
	Recognize(ctx context.Context, req Request) Outcome
}

type Client struct {
	cfg         Config
	target      Target
	conventions []Convention
	logger      *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.target.HTTPClient = hc }
}

// WithConventions replaces the fallback order.
func WithConventions(conventions ...Convention) Option {
	return func(c *Client) { c.conventions = conventions }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("recognition.client")
		}
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}

	c := &Client{
		cfg: cfg,
		target: Target{
			HTTPClient:  &http.Client{},
			URL:         joinURL(cfg.BaseURL, cfg.Path),
			APIKey:      cfg.APIKey,
			BearerToken: cfg.BearerToken,
		},
		conventions: DefaultConventions(),
		logger:      zap.L().Named("recognition.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recognize walks the conventions in order and stops at the first one that
// gets a well-formed answer. Each convention is tried at most once, each
// under its own timeout.
func (c *Client) Recognize(ctx context.Context, req Request) Outcome {
	log := contextutil.GetLogger(ctx, c.logger)
	attempts := make([]Attempt, 0, len(c.conventions))

	for _, conv := range c.conventions {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Convention: conv.Name(), Err: err})
			break
		}

		resp, err := c.attempt(ctx, conv, req)
		if err != nil {
			log.Warn("recognition attempt failed",
				zap.String("convention", conv.Name()),
				zap.Error(err),
			)
			attempts = append(attempts, Attempt{Convention: conv.Name(), Err: err})
			continue
		}
		attempts = append(attempts, Attempt{Convention: conv.Name()})

		out := c.interpret(resp, conv.Name(), attempts)
		observeOutcome(out.Kind)
		log.Info("recognition finished",
			zap.String("kind", string(out.Kind)),
			zap.String("convention", out.Convention),
			zap.String("person_name", out.PersonName),
			zap.Float64("confidence", out.Confidence),
		)
		return out
	}

	errs := make([]error, 0, len(attempts))
	for _, a := range attempts {
		errs = append(errs, fmt.Errorf("%s: %w", a.Convention, a.Err))
	}
	out := Outcome{
		Kind:     KindServiceUnavailable,
		Attempts: attempts,
		Cause:    errors.Join(errs...),
	}
	observeOutcome(out.Kind)
	log.Error("recognition service unavailable", zap.Int("attempts", len(attempts)), zap.Error(out.Cause))
	return out
}

func (c *Client) attempt(ctx context.Context, conv Convention, req Request) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := conv.Attempt(attemptCtx, c.target, req)
	observeAttempt(conv.Name(), time.Since(start), err)
	return resp, err
}

func (c *Client) interpret(resp *Response, convention string, attempts []Attempt) Outcome {
	out := Outcome{
		Kind:       KindNotRecognized,
		PersonName: resp.PersonName,
		Confidence: resp.Confidence,
		Convention: convention,
		Attempts:   attempts,
	}
	if resp.Recognized && resp.Confidence > c.cfg.Threshold {
		out.Kind = KindRecognized
	}
	return out
}

func joinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
