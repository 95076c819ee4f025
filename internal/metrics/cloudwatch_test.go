package metrics

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/daniloc96/team-roles/internal/models"
)

type mockCloudWatch struct {
	input *cloudwatch.PutMetricDataInput
	calls int
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.input = params
	m.calls++
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestEmitRun(t *testing.T) {
	client := &mockCloudWatch{}
	emitter := &Emitter{client: client, namespace: "TestNamespace"}

	result := models.NewRunResult(models.ActionRotate, models.RoleSupportSteward, false)
	result.Summary = models.RunSummary{Rotations: 1, EventsCreated: 1, StandupsUpserted: 1}

	if err := emitter.EmitRun(context.Background(), result); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.input == nil {
		t.Fatalf("expected metric input to be sent")
	}
	if aws.ToString(client.input.Namespace) != "TestNamespace" {
		t.Fatalf("expected namespace TestNamespace, got %s", aws.ToString(client.input.Namespace))
	}
	if len(client.input.MetricData) != 5 {
		t.Fatalf("expected 5 metrics, got %d", len(client.input.MetricData))
	}
	dims := client.input.MetricData[0].Dimensions
	if len(dims) != 2 || aws.ToString(dims[0].Value) != "support-steward" || aws.ToString(dims[1].Value) != "rotate" {
		t.Fatalf("unexpected dimensions %#v", dims)
	}
}

func TestEmitRunSkipsDryRun(t *testing.T) {
	client := &mockCloudWatch{}
	emitter := &Emitter{client: client, namespace: "TestNamespace"}

	if err := emitter.EmitRun(context.Background(), models.NewRunResult(models.ActionRotate, models.RoleMeetingFacilitator, true)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected no metrics for a dry run")
	}
}
