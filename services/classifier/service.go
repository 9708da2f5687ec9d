package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/config"
	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/interfaces"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/logger"
	"github.com/customeros/mailsorter/internal/tracing"
)

const maxErrorBody = 512

type classifierService struct {
	cfg        *config.ClassifierConfig
	log        logger.Logger
	httpClient *http.Client
	wait       func(ctx context.Context, d time.Duration) error
}

func NewClassifierService(cfg *config.ClassifierConfig, log logger.Logger) interfaces.ClassifierService {
	return &classifierService{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		wait: sleepContext,
	}
}

// sleepContext pauses for d unless ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Classify makes exactly one request per call, after the configured delay. It never retries.
func (s *classifierService) Classify(ctx context.Context, msg *dto.NormalizedMessage) (verdict *dto.Verdict, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClassifierService.Classify")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagMessageId(span, msg.MessageID)

	defer func() {
		if r := recover(); r != nil {
			verdict = nil
			err = errors.Wrapf(mserrors.ErrClassifierUnavailable, "recovered from panic: %v", r)
			tracing.TraceErr(span, err)
		}
	}()

	if s.cfg.ApiKey == "" {
		return nil, mserrors.ErrClassifierNotConfigured
	}

	if err = s.wait(ctx, s.cfg.RequestDelay); err != nil {
		return nil, errors.Wrapf(mserrors.ErrClassifierUnavailable, "rate limit wait interrupted: %v", err)
	}

	text, err := s.generate(ctx, buildPrompt(msg, s.cfg.BodyLimit))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	verdict, err = parseVerdict(text)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if verdict.Coerced {
		s.log.Warnf("Classifier returned an invalid category for %s, coerced to %s", msg.MessageID, verdict.Category)
	}

	tracing.LogObjectAsJson(span, "verdict", verdict)
	return verdict, nil
}

func (s *classifierService) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(dto.GenerateContentRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal payload")
	}

	endpoint, err := s.endpoint()
	if err != nil {
		return "", errors.Wrapf(mserrors.ErrClassifierUnavailable, "invalid classifier url: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return "", errors.Wrapf(mserrors.ErrClassifierUnavailable, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(mserrors.ErrClassifierUnavailable, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(mserrors.ErrClassifierUnavailable, "unable to read response body: %v", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errors.Wrap(mserrors.ErrRateLimited, "classifier returned 429")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Wrapf(mserrors.ErrClassifierUnavailable, "request failed with status code %d: %s",
			resp.StatusCode, truncateBytes(body, maxErrorBody))
	}

	var response dto.GenerateContentResponse
	if err = json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrapf(mserrors.ErrMalformedResponse, "failed to unmarshal response: %v", err)
	}

	text, ok := response.FirstText()
	if !ok {
		return "", errors.Wrap(mserrors.ErrMalformedResponse, "response has no candidate text")
	}
	return text, nil
}

func (s *classifierService) endpoint() (string, error) {
	u, err := url.Parse(s.cfg.Url)
	if err != nil {
		return "", err
	}
	query := u.Query()
	query.Set("key", s.cfg.ApiKey)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func truncateBytes(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:limit])
}
