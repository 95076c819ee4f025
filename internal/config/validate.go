package config

import (
	"fmt"
	"strings"

	"github.com/daniloc96/team-roles/internal/models"
)

var weekdays = map[string]bool{"Mon": true, "Tue": true, "Wed": true, "Thu": true, "Fri": true, "Sat": true, "Sun": true}

// Validate ensures configuration is complete and well-formed.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	var errs []string

	requireNonEmpty := func(value string, field string) {
		if value == "" {
			errs = append(errs, fmt.Sprintf("%s is required", field))
		}
	}

	requireNonEmpty(cfg.Slack.Usergroup, "slack.usergroup")
	requireNonEmpty(cfg.Calendar.ID, "calendar.id")

	if cfg.IsLambda {
		requireNonEmpty(cfg.Slack.TokenSecret, "slack.token_secret")
		requireNonEmpty(cfg.Geekbot.APIKeySecret, "geekbot.api_key_secret")
		requireNonEmpty(cfg.Calendar.CredentialsSecret, "calendar.credentials_secret")
	} else {
		requireNonEmpty(cfg.Slack.Token, "slack.token")
		requireNonEmpty(cfg.Geekbot.APIKey, "geekbot.api_key")
		requireNonEmpty(cfg.Calendar.CredentialsFile, "calendar.credentials_file")
	}

	switch cfg.Store.Backend {
	case BackendFile:
		requireNonEmpty(cfg.Roles.File, "roles.file")
	case BackendDynamoDB:
		requireNonEmpty(cfg.Roles.Team, "roles.team")
		requireNonEmpty(cfg.DynamoDB.TableName, "dynamodb.table_name")
		requireNonEmpty(cfg.DynamoDB.Region, "dynamodb.region")
	default:
		errs = append(errs, fmt.Sprintf("store.backend must be %q or %q", BackendFile, BackendDynamoDB))
	}

	if cfg.GitHub.Repository != "" {
		if owner, repo, ok := strings.Cut(cfg.GitHub.Repository, "/"); !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
			errs = append(errs, "github.repository must be owner/name")
		}
		requireNonEmpty(cfg.GitHub.Path, "github.path")
		if cfg.IsLambda {
			requireNonEmpty(cfg.GitHub.TokenSecret, "github.token_secret")
		} else {
			requireNonEmpty(cfg.GitHub.Token, "github.token")
		}
	}

	if cfg.Metrics.Enabled {
		requireNonEmpty(cfg.Metrics.Namespace, "metrics.namespace")
	}

	for _, role := range models.Roles {
		s := cfg.Standup(role)
		prefix := "standups." + role.SnapshotKey()
		requireNonEmpty(s.Name, prefix+".name")
		requireNonEmpty(s.Channel, prefix+".channel")
		if !weekdays[s.Day] {
			errs = append(errs, fmt.Sprintf("%s.day must be a short weekday name like Mon", prefix))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
