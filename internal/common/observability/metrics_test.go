package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAssessment_ExportsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := NewWithRegisterer("visa-test", reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	ctx := context.Background()
	obs.RecordAssessment(ctx, "local", OutcomeSuccess, 3*time.Millisecond)
	obs.RecordScore(ctx, "local", 72)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")

	assert.Contains(t, joined, "visa_assessments")
	assert.Contains(t, joined, "visa_assessment_duration")
	assert.Contains(t, joined, "visa_assessment_score")
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	obs.RecordAssessment(context.Background(), "local", OutcomeFailure, time.Millisecond)
	obs.RecordScore(context.Background(), "local", 10)
	assert.NoError(t, obs.Shutdown(context.Background()))
}
