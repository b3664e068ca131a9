package tracing

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct{}

func (testConfig) ServiceName() string   { return "expense-tracker-test" }
func (testConfig) AgentHostPort() string { return "localhost:6831" }
func (testConfig) IsDisabled() bool      { return true }

func Test_OnDisabledConfig_ShouldInstallTracer(t *testing.T) {
	prev := opentracing.GlobalTracer()
	t.Cleanup(func() { opentracing.SetGlobalTracer(prev) })

	closer, err := Init(testConfig{})

	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.NoError(t, closer.Close())

	span := opentracing.GlobalTracer().StartSpan("startup-check")
	span.Finish()
}
