package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/config"
	store "github.com/daniloc96/team-roles/internal/dynamodb"
	"github.com/daniloc96/team-roles/internal/geekbot"
	"github.com/daniloc96/team-roles/internal/github"
	"github.com/daniloc96/team-roles/internal/google"
	"github.com/daniloc96/team-roles/internal/interfaces"
	"github.com/daniloc96/team-roles/internal/metrics"
	"github.com/daniloc96/team-roles/internal/rotate"
	"github.com/daniloc96/team-roles/internal/secrets"
	"github.com/daniloc96/team-roles/internal/slack"
	"github.com/daniloc96/team-roles/internal/snapshot"
)

// secretSource opens the Secrets Manager cache on first use, so local runs
// with inline tokens never touch AWS.
type secretSource struct {
	manager *secrets.Manager
}

func (s *secretSource) token(inline, secretName, key string) (string, error) {
	if inline != "" || secretName == "" {
		return inline, nil
	}
	if s.manager == nil {
		m, err := secrets.NewManager()
		if err != nil {
			return "", fmt.Errorf("opening secrets manager: %w", err)
		}
		s.manager = m
	}
	return s.manager.Token(inline, secretName, key)
}

var buildEngine = func(ctx context.Context, cfg *config.Config) (*rotate.Engine, error) {
	src := &secretSource{}

	slackToken, err := src.token(cfg.Slack.Token, cfg.Slack.TokenSecret, "SLACK_BOT_TOKEN")
	if err != nil {
		return nil, fmt.Errorf("slack token: %w", err)
	}
	geekbotKey, err := src.token(cfg.Geekbot.APIKey, cfg.Geekbot.APIKeySecret, "GEEKBOT_API_KEY")
	if err != nil {
		return nil, fmt.Errorf("geekbot api key: %w", err)
	}
	googleCreds, err := secrets.ResolveSecretValue(cfg.Calendar.CredentialsSecret, cfg.Calendar.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}

	slackClient, err := slack.NewClient(slackToken)
	if err != nil {
		return nil, err
	}
	geekbotClient, err := geekbot.NewClient(geekbotKey, cfg.Geekbot.BaseURL)
	if err != nil {
		return nil, err
	}
	calendarClient, err := google.NewClient(ctx, []byte(googleCreds), cfg.Calendar.Subject)
	if err != nil {
		return nil, err
	}

	stateStore, err := newStateStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine := rotate.NewEngine(slackClient, calendarClient, geekbotClient, stateStore, cfg)

	if cfg.GitHub.Repository != "" {
		token, tokenErr := src.token(cfg.GitHub.Token, cfg.GitHub.TokenSecret, "GITHUB_TOKEN")
		if tokenErr != nil {
			return nil, fmt.Errorf("github token: %w", tokenErr)
		}
		publisher, pubErr := github.NewPublisher(token, cfg.GitHub.Repository, cfg.GitHub.Branch, cfg.GitHub.Path)
		if pubErr != nil {
			return nil, pubErr
		}
		engine.SetPublisher(publisher)
		logrus.WithFields(logrus.Fields{
			"repository": cfg.GitHub.Repository,
			"path":       cfg.GitHub.Path,
		}).Info("✅ Snapshot publishing enabled (GitHub)")
	}

	if cfg.Metrics.Enabled {
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx)
		if awsErr != nil {
			logrus.WithError(awsErr).Warn("⚠ AWS config load failed, metrics disabled")
		} else {
			engine.SetMetrics(metrics.NewEmitter(awsCfg, cfg.Metrics.Namespace))
			logrus.WithField("namespace", cfg.Metrics.Namespace).Info("✅ CloudWatch metrics enabled")
		}
	}

	return engine, nil
}

func newStateStore(ctx context.Context, cfg *config.Config) (interfaces.StateStore, error) {
	switch cfg.Store.Backend {
	case config.BackendDynamoDB:
		s, err := store.NewStore(ctx, cfg.DynamoDB, cfg.Roles.Team)
		if err != nil {
			return nil, fmt.Errorf("dynamodb store: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"table":  cfg.DynamoDB.TableName,
			"region": cfg.DynamoDB.Region,
			"team":   cfg.Roles.Team,
		}).Info("✅ Snapshot store: DynamoDB")
		return s, nil
	case config.BackendFile:
		s, err := snapshot.NewFileStore(cfg.Roles.File)
		if err != nil {
			return nil, err
		}
		logrus.WithField("path", s.Path()).Info("✅ Snapshot store: file")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
