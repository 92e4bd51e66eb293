package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplerRatio(t *testing.T) {
	tests := []struct {
		env  string
		want float64
	}{
		{env: "", want: 1},
		{env: "0.25", want: 0.25},
		{env: "0", want: 0},
		{env: "2", want: 1},
		{env: "-0.5", want: 1},
		{env: "half", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLER_RATIO", tt.env)
			assert.Equal(t, tt.want, samplerRatio())
		})
	}
}

func TestInitTracer_DisabledIsNoop(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	shutdown := InitTracer()
	assert.NoError(t, shutdown(context.Background()))
}
