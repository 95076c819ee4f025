package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/config"
	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/snapshot"
)

const sortKeyRoles = "ROLES"

type itemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// record is the single item holding a team's snapshot.
type record struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	Version   int    `dynamodbav:"version"`
	State     string `dynamodbav:"state"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// Store implements the StateStore interface using DynamoDB.
type Store struct {
	client    itemAPI
	tableName string
	team      string
	now       func() time.Time
}

// NewStore creates a new DynamoDB-backed StateStore for team.
func NewStore(ctx context.Context, cfg config.DynamoDBConfig, team string) (*Store, error) {
	if team == "" {
		return nil, fmt.Errorf("team is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.Endpoint != "" {
		// Local development: use static credentials and custom endpoint.
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &Store{
		client:    dynamodb.NewFromConfig(awsCfg, clientOpts...),
		tableName: cfg.TableName,
		team:      team,
		now:       time.Now,
	}, nil
}

func (s *Store) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: "TEAM#" + s.team},
		"sk": &types.AttributeValueMemberS{Value: sortKeyRoles},
	}
}

// Load reads the team's snapshot item.
func (s *Store) Load(ctx context.Context) (*models.RoleState, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting role snapshot: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: team %s", snapshot.ErrNotFound, s.team)
	}

	var rec record
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling role snapshot: %w", err)
	}

	state, err := snapshot.Decode([]byte(rec.State))
	if err != nil {
		return nil, err
	}
	// The item attribute is authoritative for the conditional write.
	state.Version = rec.Version
	return state, nil
}

// Save writes the snapshot as version state.Version+1, on the condition that
// the stored item is still at state.Version.
func (s *Store) Save(ctx context.Context, state *models.RoleState) error {
	if state == nil {
		return fmt.Errorf("state is required")
	}

	next := state.Clone()
	next.Version = state.Version + 1
	data, err := snapshot.Encode(next)
	if err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(record{
		PK:        "TEAM#" + s.team,
		SK:        sortKeyRoles,
		Version:   next.Version,
		State:     string(data),
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling role snapshot: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}
	if state.Version == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(pk)")
	} else {
		input.ConditionExpression = aws.String("#v = :expected")
		input.ExpressionAttributeNames = map[string]string{"#v": "version"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.Itoa(state.Version)},
		}
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var conditionErr *types.ConditionalCheckFailedException
		if errors.As(err, &conditionErr) {
			return fmt.Errorf("%w: team %s changed since version %d", snapshot.ErrVersionConflict, s.team, state.Version)
		}
		return fmt.Errorf("saving role snapshot: %w", err)
	}

	state.Version = next.Version
	logrus.WithFields(logrus.Fields{
		"team":    s.team,
		"version": state.Version,
	}).Debug("snapshot saved to DynamoDB")
	return nil
}
