package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/daniloc96/team-roles/internal/models"
)

// DefaultStandups are the standups that hand over each role.
var DefaultStandups = map[models.Role]StandupConfig{
	models.RoleMeetingFacilitator: {Name: "MeetingFacilitatorStandup", Channel: "#team-updates", Day: "Mon"},
	models.RoleSupportSteward:     {Name: "SupportStewardStandup", Channel: "#support-freshdesk", Day: "Wed"},
	models.RoleSupportTriager:     {Name: "SupportTriagerStandup", Channel: "#support-freshdesk", Day: "Wed"},
}

func standupKey(role models.Role, field string) string {
	return fmt.Sprintf("standups.%s.%s", role.SnapshotKey(), field)
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads configuration from file, environment variables, and defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("run.dry_run", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("slack.usergroup", "tech-team")
	v.SetDefault("roles.file", "team-roles.json")
	v.SetDefault("roles.team", "tech-team")
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("dynamodb.table_name", "team-roles")
	v.SetDefault("dynamodb.region", "eu-west-1")
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.path", "team-roles.json")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "TeamRoles")
	for role, s := range DefaultStandups {
		v.SetDefault(standupKey(role, "name"), s.Name)
		v.SetDefault(standupKey(role, "channel"), s.Channel)
		v.SetDefault(standupKey(role, "day"), s.Day)
		v.SetDefault(standupKey(role, "link"), s.Link)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("slack.usergroup", "SLACK_USERGROUP")
	_ = v.BindEnv("slack.token", "SLACK_BOT_TOKEN", "SLACK_TOKEN")
	_ = v.BindEnv("slack.token_secret", "SLACK_TOKEN_SECRET")
	_ = v.BindEnv("geekbot.api_key", "GEEKBOT_API_KEY")
	_ = v.BindEnv("geekbot.api_key_secret", "GEEKBOT_API_KEY_SECRET")
	_ = v.BindEnv("geekbot.base_url", "GEEKBOT_BASE_URL")
	_ = v.BindEnv("calendar.id", "CALENDAR_ID")
	_ = v.BindEnv("calendar.subject", "CALENDAR_SUBJECT")
	_ = v.BindEnv("calendar.credentials_file", "GOOGLE_CREDENTIALS_FILE")
	_ = v.BindEnv("calendar.credentials_secret", "GOOGLE_CREDENTIALS_SECRET")
	_ = v.BindEnv("roles.file", "ROLES_FILE")
	_ = v.BindEnv("roles.team", "ROLES_TEAM")
	_ = v.BindEnv("store.backend", "STORE_BACKEND")
	_ = v.BindEnv("dynamodb.table_name", "DYNAMODB_TABLE_NAME")
	_ = v.BindEnv("dynamodb.region", "DYNAMODB_REGION")
	_ = v.BindEnv("dynamodb.endpoint", "DYNAMODB_ENDPOINT")
	_ = v.BindEnv("github.repository", "GITHUB_REPOSITORY")
	_ = v.BindEnv("github.branch", "GITHUB_BRANCH")
	_ = v.BindEnv("github.path", "GITHUB_PATH")
	_ = v.BindEnv("github.token", "GITHUB_TOKEN")
	_ = v.BindEnv("github.token_secret", "GITHUB_TOKEN_SECRET")
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("metrics.namespace", "METRICS_NAMESPACE")
	_ = v.BindEnv("run.dry_run", "DRY_RUN")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")
	for _, role := range models.Roles {
		for _, field := range []string{"name", "channel", "day", "link"} {
			key := standupKey(role, field)
			_ = v.BindEnv(key, envName(key))
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	// Explicitly map values; the role-keyed standup map does not survive
	// Unmarshal with dashed role names.
	cfg := &Config{}

	cfg.Slack.Usergroup = v.GetString("slack.usergroup")
	cfg.Slack.Token = v.GetString("slack.token")
	cfg.Slack.TokenSecret = v.GetString("slack.token_secret")

	cfg.Geekbot.APIKey = v.GetString("geekbot.api_key")
	cfg.Geekbot.APIKeySecret = v.GetString("geekbot.api_key_secret")
	cfg.Geekbot.BaseURL = v.GetString("geekbot.base_url")

	cfg.Calendar.ID = v.GetString("calendar.id")
	cfg.Calendar.Subject = v.GetString("calendar.subject")
	cfg.Calendar.CredentialsFile = v.GetString("calendar.credentials_file")
	cfg.Calendar.CredentialsSecret = v.GetString("calendar.credentials_secret")

	cfg.Roles.File = v.GetString("roles.file")
	cfg.Roles.Team = v.GetString("roles.team")
	cfg.Store.Backend = strings.ToLower(v.GetString("store.backend"))

	cfg.DynamoDB.TableName = v.GetString("dynamodb.table_name")
	cfg.DynamoDB.Region = v.GetString("dynamodb.region")
	cfg.DynamoDB.Endpoint = v.GetString("dynamodb.endpoint")

	cfg.GitHub.Repository = v.GetString("github.repository")
	cfg.GitHub.Branch = v.GetString("github.branch")
	cfg.GitHub.Path = v.GetString("github.path")
	cfg.GitHub.Token = v.GetString("github.token")
	cfg.GitHub.TokenSecret = v.GetString("github.token_secret")

	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	cfg.Metrics.Namespace = v.GetString("metrics.namespace")

	cfg.Standups = make(map[models.Role]StandupConfig, len(models.Roles))
	for _, role := range models.Roles {
		cfg.Standups[role] = StandupConfig{
			Name:    v.GetString(standupKey(role, "name")),
			Channel: v.GetString(standupKey(role, "channel")),
			Day:     v.GetString(standupKey(role, "day")),
			Link:    v.GetString(standupKey(role, "link")),
		}
	}

	cfg.Run.DryRun = v.GetBool("run.dry_run")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	cfg.IsLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	return cfg, nil
}
