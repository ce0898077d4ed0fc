package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const metricNamespace = "Lifelog/API"

// Metrics publishes request metrics to CloudWatch. Disabled instances are
// no-ops so call sites never need to branch.
type Metrics struct {
	client  *cloudwatch.Client
	logger  *zap.Logger
	enabled bool
}

// NewMetrics creates a metrics publisher. Pass enabled=false to disable
// publishing entirely (local development, tests).
func NewMetrics(client *cloudwatch.Client, logger *zap.Logger, enabled bool) *Metrics {
	return &Metrics{client: client, logger: logger, enabled: enabled}
}

// RecordRequest emits a count and latency datum for one handled request.
// Publishing is best effort; a metrics failure never affects the response.
func (m *Metrics) RecordRequest(ctx context.Context, route string, status int, duration time.Duration) {
	if !m.enabled || m.client == nil {
		return
	}
	dims := []cwtypes.Dimension{
		{Name: aws.String("Route"), Value: aws.String(route)},
		{Name: aws.String("StatusClass"), Value: aws.String(statusClass(status))},
	}
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricNamespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String("RequestCount"),
				Dimensions: dims,
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
			},
			{
				MetricName: aws.String("RequestLatency"),
				Dimensions: dims,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
			},
		},
	})
	if err != nil {
		m.logger.Warn("failed to publish metrics", zap.Error(err))
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
