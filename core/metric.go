// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"math"
	"strings"
)

// Metric selects how distance between two embeddings is measured.
// Smaller distances always mean more similar vectors.
type Metric string

const (
	// MetricInnerProduct is 1 minus the dot product.
	MetricInnerProduct Metric = "ip"
	// MetricCosine is 1 minus the cosine similarity.
	MetricCosine Metric = "cosine"
	// MetricL2 is the squared euclidean distance.
	MetricL2 Metric = "l2"
)

// DefaultMetric is used when a collection is created without an explicit metric.
const DefaultMetric = MetricInnerProduct

// ParseMetric converts a configuration value into a Metric.
// The empty string selects DefaultMetric.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return DefaultMetric, nil
	case MetricInnerProduct, MetricCosine, MetricL2:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
}

// String implements fmt.Stringer.
func (m Metric) String() string {
	return string(m)
}

// Distance measures a against b under the metric.
func (m Metric) Distance(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	switch m {
	case MetricInnerProduct:
		return 1 - dot(a, b), nil
	case MetricCosine:
		na, nb := norm(a), norm(b)
		if na == 0 || nb == 0 {
			return 1, nil
		}
		return 1 - float32(float64(dot(a, b))/(na*nb)), nil
	case MetricL2:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return float32(sum), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMetric, string(m))
	}
}

func dot(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
