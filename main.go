package main

import (
	"context"
	"fmt"

	"github.com/daniloc96/team-roles/cmd"
	"github.com/daniloc96/team-roles/internal/config"
	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/rotate"
)

func main() {
	cmd.SetLambdaHandler(HandleRequest)
	cmd.SetEngineBuilder(func(ctx context.Context, cfg *config.Config) (cmd.Engine, error) {
		engine, err := buildEngine(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return engine, nil
	})
	cmd.Execute()
}

// HandleRequest is the AWS Lambda handler. Scheduled rules pass the action
// and role as constant input.
func HandleRequest(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error) {
	if event.Source != "" || event.DetailType != "" {
		if !isScheduledEvent(event) {
			return models.NewErrorResponse(fmt.Errorf("unsupported event source")), nil
		}
	}

	action, err := models.ParseAction(event.Action)
	if err != nil {
		return models.NewErrorResponse(err), nil
	}
	role, err := models.ParseRole(event.Role)
	if err != nil {
		return models.NewErrorResponse(err), nil
	}

	cfg, err := config.Load("")
	if err != nil {
		return models.NewErrorResponse(err), nil
	}

	cfg.Run.DryRun = event.IsDryRun(cfg.Run.DryRun)
	if err := config.Validate(cfg); err != nil {
		return models.NewErrorResponse(err), nil
	}

	result, err := runRequest(ctx, cfg, rotate.Request{Action: action, Role: role})
	if err != nil {
		return models.NewErrorResponse(err), nil
	}

	return models.NewSuccessResponse(result), nil
}

func isScheduledEvent(event models.LambdaEvent) bool {
	return event.Source == "aws.events" && event.DetailType == "Scheduled Event"
}

var runRequest = func(ctx context.Context, cfg *config.Config, req rotate.Request) (*models.RunResult, error) {
	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx, req)
}
