package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/daniloc96/team-roles/internal/config"
	teamlog "github.com/daniloc96/team-roles/internal/log"
	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/rotate"
)

// Engine is what the commands drive. *rotate.Engine implements it.
type Engine interface {
	Run(ctx context.Context, req rotate.Request) (*models.RunResult, error)
	InitRoles(ctx context.Context, opts rotate.InitOptions) (*models.RoleState, error)
	ListMembers(ctx context.Context, usergroup string) (models.Members, error)
}

var (
	cfgFile       string
	flagDryRun    bool
	flagLogLevel  string
	flagLogFormat string
	flagUsergroup string
	flagCalendar  string

	lambdaHandler func(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error)
	newEngine     func(ctx context.Context, cfg *config.Config) (Engine, error)
)

// SetLambdaHandler registers the Lambda handler used in Lambda mode.
func SetLambdaHandler(handler func(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error)) {
	lambdaHandler = handler
}

// SetEngineBuilder registers how commands build an engine from the loaded config.
func SetEngineBuilder(builder func(ctx context.Context, cfg *config.Config) (Engine, error)) {
	newEngine = builder
}

var rootCmd = &cobra.Command{
	Use:           "team-roles",
	Short:         "Rotate team roles through a Slack usergroup",
	Long:          "Rotates the Meeting Facilitator, Support Steward and Support Triager roles, keeps the role calendar filled and points the Geekbot standups at the current holders.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI or Lambda handler depending on environment.
func Execute() {
	if isLambda() {
		if lambdaHandler == nil {
			logrus.Fatal("lambda handler is not configured")
		}
		lambda.Start(lambdaHandler)
		return
	}

	// Local runs read tokens from .env when present.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", true, "Preview changes without applying")
	rootCmd.PersistentFlags().StringVar(&flagUsergroup, "usergroup", "", "Slack usergroup handle the roles rotate through")
	rootCmd.PersistentFlags().StringVar(&flagCalendar, "calendar-id", "", "Google Calendar holding the role events")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: json, pretty or text")
}

func isLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// setup loads and validates the config, configures logging and builds the engine.
func setup(cmd *cobra.Command) (*config.Config, Engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	overrideConfigFromFlags(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	teamlog.Configure(logrus.StandardLogger(), os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if newEngine == nil {
		return nil, nil, fmt.Errorf("rotation engine is not configured")
	}
	engine, err := newEngine(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, engine, nil
}

func overrideConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("dry-run") {
		cfg.Run.DryRun = flagDryRun
	}
	if cmd.Flags().Changed("usergroup") {
		cfg.Slack.Usergroup = flagUsergroup
	}
	if cmd.Flags().Changed("calendar-id") {
		cfg.Calendar.ID = flagCalendar
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = flagLogFormat
	}
}

// run builds the engine and performs req for role argument args[0].
func run(cmd *cobra.Command, action models.Action, args []string, fill func(*rotate.Request) error) error {
	role, err := models.ParseRole(args[0])
	if err != nil {
		return err
	}
	_, engine, err := setup(cmd)
	if err != nil {
		return err
	}

	req := rotate.Request{Action: action, Role: role}
	if fill != nil {
		if err := fill(&req); err != nil {
			return err
		}
	}

	result, err := engine.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *models.RunResult) {
	out := cmd.OutOrStdout()
	prefix := ""
	if result.DryRun {
		prefix = "[DRY RUN] "
	}
	if r := result.Rotation; r != nil {
		fmt.Fprintf(out, "%s%s: %s -> %s\n", prefix, result.Role.Title(), r.Previous.Name, r.Next.Name)
		if r.Buddy != nil {
			fmt.Fprintf(out, "%sbuddy: %s\n", prefix, r.Buddy.Name)
		}
	}
	if s := result.Standup; s != nil {
		fmt.Fprintf(out, "%sstandup %s in %s: %v\n", prefix, s.Name, s.Channel, s.Users)
	}
	printEvents(cmd, prefix+"created", result.Events)
	printEvents(cmd, prefix+"deleted", result.Deleted)
}

func printEvents(cmd *cobra.Command, title string, events []models.CalendarEvent) {
	if len(events) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d):\n", title, len(events))
	for i, ev := range events {
		fmt.Fprintf(out, "  %d. %s  %s .. %s\n", i+1, ev.Summary, ev.StartDate(), ev.EndDate())
	}
}
