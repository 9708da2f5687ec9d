package classifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsorter/config"
	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/internal/enum"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/logger"
)

func generated(text string) string {
	payload, _ := json.Marshal(dto.GenerateContentResponse{
		Candidates: []dto.Candidate{{Content: dto.Content{Parts: []dto.Part{{Text: text}}}}},
	})
	return string(payload)
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*classifierService, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	s := NewClassifierService(&config.ClassifierConfig{
		Url:       server.URL + "/v1beta/models/test:generateContent",
		ApiKey:    "test-key",
		Timeout:   5 * time.Second,
		BodyLimit: 500,
	}, logger.NewNopLogger()).(*classifierService)
	return s, &calls
}

func interviewMessage() *dto.NormalizedMessage {
	return &dto.NormalizedMessage{
		MessageID: "interview@example.com",
		Subject:   "Interview invitation for Senior Engineer",
		From:      "Jane <jane@hiring.example.com>",
		Body:      "We would like to schedule your interview on Tuesday.",
	}
}

func TestClassify_HappyPath(t *testing.T) {
	var gotKey string
	var gotPrompt string
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		var req dto.GenerateContentRequest
		_ = json.Unmarshal(body, &req)
		gotPrompt = req.Contents[0].Parts[0].Text
		_, _ = w.Write([]byte(generated("```json\n{\"category\": \"job_interview\", \"confidence\": 0.92, \"reasoning\": \"Interview scheduling\"}\n```")))
	})

	verdict, err := s.Classify(context.Background(), interviewMessage())
	require.NoError(t, err)

	assert.Equal(t, int32(1), *calls)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotPrompt, "Interview invitation for Senior Engineer")
	assert.Contains(t, gotPrompt, "job_interview")
	assert.Equal(t, enum.CategoryJobInterview, verdict.Category)
	assert.Equal(t, 0.92, verdict.Confidence)
	assert.Equal(t, enum.PriorityHigh, verdict.Priority)
	assert.False(t, verdict.Coerced)
}

func TestClassify_RateLimited(t *testing.T) {
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	verdict, err := s.Classify(context.Background(), interviewMessage())
	assert.Nil(t, verdict)
	assert.True(t, errors.Is(err, mserrors.ErrRateLimited))
	assert.Equal(t, int32(1), *calls)

	degraded := Degrade(err)
	assert.Equal(t, enum.CategoryOther, degraded.Category)
	assert.Equal(t, 0.0, degraded.Confidence)
	assert.Equal(t, enum.PriorityMedium, degraded.Priority)
	assert.Contains(t, strings.ToLower(degraded.Reasoning), "rate limit")
}

func TestClassify_ServerError(t *testing.T) {
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := s.Classify(context.Background(), interviewMessage())
	assert.True(t, errors.Is(err, mserrors.ErrClassifierUnavailable))
	assert.Equal(t, int32(1), *calls)

	degraded := Degrade(err)
	assert.Equal(t, enum.CategoryOther, degraded.Category)
	assert.NotContains(t, strings.ToLower(degraded.Reasoning), "rate limit")
}

func TestClassify_NoJSONInText(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(generated("I am not sure what this email is about.")))
	})

	_, err := s.Classify(context.Background(), interviewMessage())
	assert.True(t, errors.Is(err, mserrors.ErrMalformedResponse))
}

func TestClassify_MissingCandidates(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := s.Classify(context.Background(), interviewMessage())
	assert.True(t, errors.Is(err, mserrors.ErrMalformedResponse))
}

func TestClassify_InvalidCategoryIsCoerced(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(generated(`{"category": "urgent_spam", "confidence": 0.99, "reasoning": "looks urgent"}`)))
	})

	verdict, err := s.Classify(context.Background(), interviewMessage())
	require.NoError(t, err)
	assert.Equal(t, enum.CategoryOther, verdict.Category)
	assert.Equal(t, coercedConfidence, verdict.Confidence)
	assert.Equal(t, enum.PriorityMedium, verdict.Priority)
	assert.Contains(t, verdict.Reasoning, "urgent_spam")
	assert.True(t, verdict.Coerced)
}

func TestClassify_MissingApiKey(t *testing.T) {
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
	s.cfg.ApiKey = ""

	_, err := s.Classify(context.Background(), interviewMessage())
	assert.True(t, errors.Is(err, mserrors.ErrClassifierNotConfigured))
	assert.True(t, mserrors.IsRunFatal(err))
	assert.Equal(t, int32(0), *calls)
}

func TestClassify_WaitsBeforeEveryCall(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(generated(`{"category": "newsletter", "confidence": 0.7, "reasoning": "digest"}`)))
	})
	s.cfg.RequestDelay = 4 * time.Second

	var waits []time.Duration
	s.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	for i := 0; i < 3; i++ {
		_, err := s.Classify(context.Background(), interviewMessage())
		require.NoError(t, err)
	}
	assert.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second, 4 * time.Second}, waits)
}

func TestClassify_WaitIsCancellable(t *testing.T) {
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
	s.cfg.RequestDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := s.Classify(ctx, interviewMessage())
	assert.True(t, errors.Is(err, mserrors.ErrClassifierUnavailable))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(0), *calls)
}

func TestClassify_Timeout(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	})
	s.httpClient.Timeout = 50 * time.Millisecond

	_, err := s.Classify(context.Background(), interviewMessage())
	assert.True(t, errors.Is(err, mserrors.ErrClassifierUnavailable))
}
