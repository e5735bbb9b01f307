package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/boundary-microservice/internal/metrics"
	"github.com/boundary-microservice/internal/observability"
	"github.com/boundary-microservice/internal/pkg/errors"
)

// максимальный размер ответа провайдера; полигоны стран бывают большими
const maxBodyBytes = 32 << 20

// Options - параметры транспорта одного провайдера
type Options struct {
	Provider       string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
	UserAgent      string
}

// Client - HTTP транспорт провайдера геокодирования: таймауты, rate limit,
// классификация ошибок, метрики и трассировка. Повторов нет
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	provider   string
	userAgent  string
	logger     *zap.Logger
}

// New создаёт транспорт
func New(opts Options, logger *zap.Logger) *Client {
	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	httpTransport := http.DefaultTransport.(*http.Transport).Clone()
	httpTransport.DialContext = dialer.DialContext
	httpTransport.TLSHandshakeTimeout = opts.ConnectTimeout

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.RequestTimeout,
			Transport: httpTransport,
		},
		limiter:   limiter,
		provider:  opts.Provider,
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// GetJSON выполняет GET и декодирует JSON ответ в out.
// operation используется в метриках и имени спана
func (c *Client) GetJSON(ctx context.Context, operation, rawURL string, out interface{}) (err error) {
	ctx, span := observability.Tracer().Start(ctx, c.provider+"."+operation)
	span.SetAttributes(
		attribute.String("provider", c.provider),
		attribute.String("operation", operation),
	)
	start := time.Now()

	defer func() {
		outcome := outcomeOf(err)
		metrics.ProviderRequestsTotal.WithLabelValues(c.provider, operation, outcome).Inc()
		metrics.ProviderDurationMs.WithLabelValues(c.provider, operation).
			Observe(float64(time.Since(start).Milliseconds()))
		span.SetAttributes(attribute.String("outcome", outcome))
		if err != nil && outcome != "not_found" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.limiter != nil {
		// Wait отказывает заранее, если токен не успеет до дедлайна
		if werr := c.limiter.Wait(ctx); werr != nil {
			if stderrors.Is(ctx.Err(), context.Canceled) {
				return classifyTransportError(ctx, werr)
			}
			return fmt.Errorf("%w: rate limit wait: %v", errors.ErrTimeout, werr)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", redactURLError(err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("Calling geocoding provider",
		zap.String("provider", c.provider),
		zap.String("operation", operation),
		zap.String("path", req.URL.Path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, redactURLError(err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug("Geocoding provider returned error status",
			zap.String("provider", c.provider),
			zap.String("operation", operation),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return classifyStatus(resp.StatusCode, operation)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return classifyTransportError(ctx, ctxErr)
		}
		if isTimeout(err) {
			return errors.ErrTimeout.WithDetails(map[string]interface{}{"operation": operation})
		}
		return fmt.Errorf("%w: failed to decode %s response: %v", errors.ErrProviderUnavailable, operation, err)
	}

	return nil
}

// classifyStatus переводит HTTP статус в ошибку предметной области.
// Прочие 4xx означают, что провайдер не может ответить на такой запрос: это NotFound
func classifyStatus(status int, operation string) error {
	details := map[string]interface{}{"operation": operation, "status": status}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.ErrUnauthorized.WithDetails(details)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return errors.ErrTimeout.WithDetails(details)
	case status == http.StatusTooManyRequests || status >= 500:
		return errors.ErrProviderUnavailable.WithDetails(details)
	default:
		return errors.ErrNotFound.WithDetails(details)
	}
}

// classifyTransportError переводит ошибку выполнения запроса.
// Отмена вызывающим возвращается как context.Canceled
func classifyTransportError(ctx context.Context, err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request cancelled: %w", context.Canceled)
	}
	if stderrors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("%w: %v", errors.ErrTimeout, err)
	}
	if stderrors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: connection refused", errors.ErrProviderUnavailable)
	}
	return fmt.Errorf("%w: %v", errors.ErrProviderUnavailable, err)
}

// redactURLError убирает query из URL в тексте ошибки: там ключ API провайдера
func redactURLError(err error) error {
	var urlErr *url.Error
	if !stderrors.As(err, &urlErr) {
		return err
	}
	redacted := *urlErr
	redacted.URL = stripQuery(urlErr.URL)
	return &redacted
}

func stripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

func isTimeout(err error) bool {
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case stderrors.Is(err, errors.ErrNotFound):
		return "not_found"
	case stderrors.Is(err, errors.ErrTimeout):
		return "timeout"
	case stderrors.Is(err, errors.ErrUnauthorized):
		return "unauthorized"
	case stderrors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "unavailable"
	}
}
