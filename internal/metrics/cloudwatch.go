package metrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/daniloc96/team-roles/internal/models"
)

// CloudWatchAPI defines the CloudWatch client interface used for metrics.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Emitter sends run counters to CloudWatch.
type Emitter struct {
	client    CloudWatchAPI
	namespace string
}

// NewEmitter creates a CloudWatch metrics emitter.
func NewEmitter(cfg aws.Config, namespace string) *Emitter {
	return &Emitter{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
	}
}

// EmitRun publishes the counters of one run, dimensioned by role and action.
// Dry runs are not reported.
func (e *Emitter) EmitRun(ctx context.Context, result *models.RunResult) error {
	if result == nil || result.DryRun {
		return nil
	}

	dims := []types.Dimension{
		{Name: aws.String("Role"), Value: aws.String(string(result.Role))},
		{Name: aws.String("Action"), Value: aws.String(string(result.Action))},
	}
	s := result.Summary
	metrics := []types.MetricDatum{
		metricDatum("Rotations", s.Rotations, dims),
		metricDatum("EventsCreated", s.EventsCreated, dims),
		metricDatum("EventsDeleted", s.EventsDeleted, dims),
		metricDatum("StandupsUpserted", s.StandupsUpserted, dims),
		metricDatum("Errors", s.Errors, dims),
	}

	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(e.namespace),
		MetricData: metrics,
	})
	return err
}

func metricDatum(name string, value int, dims []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Unit:       types.StandardUnitCount,
		Value:      aws.Float64(float64(value)),
		Dimensions: dims,
	}
}
