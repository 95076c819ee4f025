package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/snapshot"
)

// fakeTable keeps a single item and honours the version condition.
type fakeTable struct {
	item map[string]types.AttributeValue
	puts []*dynamodb.PutItemInput
}

func (f *fakeTable) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.item}, nil
}

func (f *fakeTable) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, params)
	switch aws.ToString(params.ConditionExpression) {
	case "attribute_not_exists(pk)":
		if f.item != nil {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
		}
	case "#v = :expected":
		expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN).Value
		if f.item == nil || f.item["version"].(*types.AttributeValueMemberN).Value != expected {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("version")}
		}
	}
	f.item = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func newTestStore(table *fakeTable) *Store {
	return &Store{
		client:    table,
		tableName: "team-roles",
		team:      "tech-team",
		now:       func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) },
	}
}

func sampleState() *models.RoleState {
	state := models.NewRoleState()
	_ = state.Set(models.RoleMeetingFacilitator, models.Simple{Holder: models.Member{Name: "Alice", ID: "U1"}})
	_ = state.Set(models.RoleSupportTriager, models.Overlapping{
		Current:  models.Member{Name: "Bob", ID: "U2"},
		Incoming: models.Member{Name: "Carol", ID: "U3"},
	})
	return state
}

func TestStoreSaveAndLoad(t *testing.T) {
	table := &fakeTable{}
	store := newTestStore(table)
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, snapshot.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	state := sampleState()
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if state.Version != 1 {
		t.Fatalf("expected version 1, got %d", state.Version)
	}
	pk := table.item["pk"].(*types.AttributeValueMemberS).Value
	if pk != "TEAM#tech-team" {
		t.Fatalf("unexpected pk %s", pk)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Version != 1 {
		t.Fatalf("expected loaded version 1, got %d", loaded.Version)
	}
	a, _ := loaded.Assignment(models.RoleSupportTriager)
	if a.Cursor().ID != "U3" {
		t.Fatalf("expected incoming triager U3, got %#v", a)
	}

	if err := store.Save(ctx, loaded); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if loaded.Version != 2 {
		t.Fatalf("expected version 2, got %d", loaded.Version)
	}
}

func TestStoreSaveConflict(t *testing.T) {
	table := &fakeTable{}
	store := newTestStore(table)
	ctx := context.Background()

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	stale := sampleState()
	err := store.Save(ctx, stale)
	if !errors.Is(err, snapshot.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if stale.Version != 0 {
		t.Fatalf("expected stale version untouched, got %d", stale.Version)
	}
}
