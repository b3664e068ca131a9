package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type config interface {
	ServiceName() string
	AgentHostPort() string
	IsDisabled() bool
}

// Init installs a Jaeger tracer as the global opentracing tracer. A disabled
// config installs a no-op tracer. Close the returned closer on exit to
// flush spans.
func Init(cfg config) (io.Closer, error) {
	c := jaegercfg.Configuration{
		ServiceName: cfg.ServiceName(),
		Disabled:    cfg.IsDisabled(),
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.AgentHostPort(),
		},
	}

	tracer, closer, err := c.NewTracer()
	if err != nil {
		return nil, errors.Wrap(err, "cannot init tracer")
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
