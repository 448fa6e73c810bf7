package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		input   string
		want    Metric
		wantErr error
	}{
		{"", MetricInnerProduct, nil},
		{"ip", MetricInnerProduct, nil},
		{"cosine", MetricCosine, nil},
		{" L2 ", MetricL2, nil},
		{"manhattan", "", ErrInvalidMetric},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMetric(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseMetric(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricDistance(t *testing.T) {
	unitX := []float32{1, 0}
	unitY := []float32{0, 1}
	halfX := []float32{0.5, 0}

	tests := []struct {
		name   string
		metric Metric
		a, b   []float32
		want   float32
	}{
		{"ip identical unit vectors", MetricInnerProduct, unitX, unitX, 0},
		{"ip orthogonal", MetricInnerProduct, unitX, unitY, 1},
		{"ip scaled", MetricInnerProduct, unitX, halfX, 0.5},
		{"cosine ignores magnitude", MetricCosine, unitX, halfX, 0},
		{"cosine orthogonal", MetricCosine, unitX, unitY, 1},
		{"cosine opposite", MetricCosine, unitX, []float32{-1, 0}, 2},
		{"cosine zero vector", MetricCosine, unitX, []float32{0, 0}, 1},
		{"l2 identical", MetricL2, unitX, unitX, 0},
		{"l2 is squared", MetricL2, []float32{0, 0}, []float32{3, 4}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.metric.Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestMetricDistanceErrors(t *testing.T) {
	_, err := MetricCosine.Distance([]float32{1, 2}, []float32{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Metric("hamming").Distance([]float32{1}, []float32{1})
	assert.ErrorIs(t, err, ErrInvalidMetric)
}
