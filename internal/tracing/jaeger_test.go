package tracing

import (
	"testing"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsorter/internal/logger"
)

func TestNewJaegerTracer_DisabledIsNoop(t *testing.T) {
	for _, cfg := range []*JaegerConfig{nil, {Enabled: false, ServiceName: "mailsorter"}} {
		tracer, closer, err := NewJaegerTracer(cfg, logger.NewNopLogger())
		require.NoError(t, err)
		assert.IsType(t, opentracing.NoopTracer{}, tracer)
		assert.NoError(t, closer.Close())
	}
}

func TestJaegerConfiguration_AgentByDefault(t *testing.T) {
	cfg := (&JaegerConfig{
		ServiceName:   "mailsorter",
		AgentHost:     "jaeger",
		AgentPort:     "6831",
		SamplerType:   "const",
		SamplerParam:  1,
		FlushInterval: 2 * time.Second,
	}).configuration()

	assert.Equal(t, "mailsorter", cfg.ServiceName)
	assert.Equal(t, "jaeger:6831", cfg.Reporter.LocalAgentHostPort)
	assert.Empty(t, cfg.Reporter.CollectorEndpoint)
	assert.Equal(t, 2*time.Second, cfg.Reporter.BufferFlushInterval)
	assert.Equal(t, "const", cfg.Sampler.Type)
	assert.Empty(t, cfg.Tags)
}

func TestJaegerConfiguration_CollectorAndPodTag(t *testing.T) {
	cfg := (&JaegerConfig{
		ServiceName:  "mailsorter",
		CollectorURL: "http://jaeger:14268/api/traces",
		AgentHost:    "localhost",
		AgentPort:    "6831",
		PodName:      "mailsorter-0",
	}).configuration()

	assert.Equal(t, "http://jaeger:14268/api/traces", cfg.Reporter.CollectorEndpoint)
	assert.Empty(t, cfg.Reporter.LocalAgentHostPort)
	require.Len(t, cfg.Tags, 1)
	assert.Equal(t, opentracing.Tag{Key: tagPodName, Value: "mailsorter-0"}, cfg.Tags[0])
}
