package config

import "github.com/daniloc96/team-roles/internal/models"

// Store backends.
const (
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
)

// Config holds all configuration for a rotation run.
type Config struct {
	Slack    SlackConfig                   `json:"slack"`
	Geekbot  GeekbotConfig                 `json:"geekbot"`
	Calendar CalendarConfig                `json:"calendar"`
	Roles    RolesConfig                   `json:"roles"`
	Store    StoreConfig                   `json:"store"`
	DynamoDB DynamoDBConfig                `json:"dynamodb"`
	GitHub   GitHubConfig                  `json:"github"`
	Metrics  MetricsConfig                 `json:"metrics"`
	Standups map[models.Role]StandupConfig `json:"standups"`
	Run      RunConfig                     `json:"run"`
	Log      LogConfig                     `json:"log"`
	IsLambda bool                          `json:"-"`
}

// SlackConfig holds the membership source settings.
type SlackConfig struct {
	Usergroup   string `json:"usergroup"`
	Token       string `json:"-"`
	TokenSecret string `json:"token_secret,omitempty"`
}

// GeekbotConfig holds standup API settings.
type GeekbotConfig struct {
	APIKey       string `json:"-"`
	APIKeySecret string `json:"api_key_secret,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
}

// CalendarConfig holds Google Calendar settings.
type CalendarConfig struct {
	ID                string `json:"id"`
	Subject           string `json:"subject,omitempty"`
	CredentialsFile   string `json:"credentials_file,omitempty"`
	CredentialsSecret string `json:"credentials_secret,omitempty"`
}

// RolesConfig locates the role snapshot.
type RolesConfig struct {
	File string `json:"file"`
	Team string `json:"team"`
}

// StoreConfig selects the snapshot backend.
type StoreConfig struct {
	Backend string `json:"backend"`
}

// DynamoDBConfig holds DynamoDB settings for the snapshot store.
type DynamoDBConfig struct {
	TableName string `json:"table_name"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint,omitempty"`
}

// GitHubConfig holds the snapshot publishing target. An empty repository
// disables publishing.
type GitHubConfig struct {
	Repository  string `json:"repository"`
	Branch      string `json:"branch"`
	Path        string `json:"path"`
	Token       string `json:"-"`
	TokenSecret string `json:"token_secret,omitempty"`
}

// MetricsConfig holds CloudWatch settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace"`
}

// StandupConfig describes the standup that hands over a role.
type StandupConfig struct {
	Name    string `json:"name"`
	Channel string `json:"channel"`
	Day     string `json:"day"`
	Link    string `json:"link,omitempty"`
}

// RunConfig holds run behavior settings.
type RunConfig struct {
	DryRun bool `json:"dry_run"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Standup returns the standup settings of role.
func (c *Config) Standup(role models.Role) StandupConfig {
	if c.Standups == nil {
		return StandupConfig{}
	}
	return c.Standups[role]
}
