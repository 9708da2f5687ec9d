package tracing

import (
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-client-go/log/zap"

	"github.com/customeros/mailsorter/internal/logger"
)

const tagPodName = "pod"

type JaegerConfig struct {
	Enabled       bool          `env:"JAEGER_ENABLED" envDefault:"false"`
	ServiceName   string        `env:"JAEGER_SERVICE_NAME" envDefault:"mailsorter"`
	CollectorURL  string        `env:"JAEGER_ENDPOINT"`
	AgentHost     string        `env:"JAEGER_AGENT_HOST" envDefault:"localhost"`
	AgentPort     string        `env:"JAEGER_AGENT_PORT" envDefault:"6831"`
	SamplerType   string        `env:"JAEGER_SAMPLER_TYPE" envDefault:"const"`
	SamplerParam  float64       `env:"JAEGER_SAMPLER_PARAM" envDefault:"1"`
	LogSpans      bool          `env:"JAEGER_REPORTER_LOG_SPANS" envDefault:"false"`
	FlushInterval time.Duration `env:"JAEGER_REPORTER_FLUSH_INTERVAL" envDefault:"1s"`
	PodName       string        `env:"POD_NAME"`
}

// NewJaegerTracer returns a no-op tracer and closer when tracing is disabled.
func NewJaegerTracer(jaegerConfig *JaegerConfig, log logger.Logger) (opentracing.Tracer, io.Closer, error) {
	if jaegerConfig == nil || !jaegerConfig.Enabled {
		return opentracing.NoopTracer{}, io.NopCloser(nil), nil
	}

	tracer, closer, err := jaegerConfig.configuration().NewTracer(config.Logger(zap.NewLogger(log.Logger())))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "jaeger tracer for service %s", jaegerConfig.ServiceName)
	}
	return tracer, closer, nil
}

// configuration reports to the collector when CollectorURL is set and to the local agent otherwise.
func (c *JaegerConfig) configuration() *config.Configuration {
	reporter := &config.ReporterConfig{
		LogSpans:            c.LogSpans,
		BufferFlushInterval: c.FlushInterval,
	}
	if c.CollectorURL != "" {
		reporter.CollectorEndpoint = c.CollectorURL
	} else {
		reporter.LocalAgentHostPort = c.AgentHost + ":" + c.AgentPort
	}

	cfg := &config.Configuration{
		ServiceName: c.ServiceName,
		Sampler: &config.SamplerConfig{
			Type:  c.SamplerType,
			Param: c.SamplerParam,
		},
		Reporter: reporter,
	}
	if c.PodName != "" {
		cfg.Tags = []opentracing.Tag{{Key: tagPodName, Value: c.PodName}}
	}
	return cfg
}
