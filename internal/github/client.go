package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/snapshot"
)

type contentsService interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
}

// Publisher commits the role snapshot to a repository file.
type Publisher struct {
	contents contentsService
	owner    string
	repo     string
	branch   string
	path     string
}

// NewPublisher creates a publisher for "owner/name" using a personal access token.
func NewPublisher(token, repository, branch, path string) (*Publisher, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("repository must be owner/name, got %q", repository)
	}
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(context.Background(), ts))
	return &Publisher{contents: client.Repositories, owner: owner, repo: repo, branch: branch, path: path}, nil
}

// Publish writes the rendered snapshot, creating the file if it does not
// exist. Nothing is committed when the file already holds the same content.
func (p *Publisher) Publish(ctx context.Context, state *models.RoleState, message string) error {
	data, err := snapshot.Encode(state)
	if err != nil {
		return err
	}

	fields := logrus.Fields{"repository": p.owner + "/" + p.repo, "path": p.path, "branch": p.branch}

	var (
		existing *github.RepositoryContent
		missing  bool
	)
	err = retryOnRateLimit(ctx, func() error {
		var getErr error
		existing, _, _, getErr = p.contents.GetContents(ctx, p.owner, p.repo, p.path, &github.RepositoryContentGetOptions{Ref: p.branch})
		if isNotFound(getErr) {
			missing = true
			return nil
		}
		return getErr
	})
	if err != nil {
		logGitHubError(err, fields)
		return fmt.Errorf("reading %s: %w", p.path, err)
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: data,
	}
	if p.branch != "" {
		opts.Branch = github.String(p.branch)
	}

	if missing || existing == nil {
		err = retryOnRateLimit(ctx, func() error {
			_, _, createErr := p.contents.CreateFile(ctx, p.owner, p.repo, p.path, opts)
			return createErr
		})
		if err != nil {
			logGitHubError(err, fields)
			return fmt.Errorf("creating %s: %w", p.path, err)
		}
		logrus.WithFields(fields).Info("📤 Published role snapshot (new file)")
		return nil
	}

	current, err := existing.GetContent()
	if err == nil && current == string(data) {
		logrus.WithFields(fields).Debug("published snapshot already up to date")
		return nil
	}

	opts.SHA = existing.SHA
	err = retryOnRateLimit(ctx, func() error {
		_, _, updateErr := p.contents.UpdateFile(ctx, p.owner, p.repo, p.path, opts)
		return updateErr
	})
	if err != nil {
		logGitHubError(err, fields)
		return fmt.Errorf("updating %s: %w", p.path, err)
	}
	logrus.WithFields(fields).Info("📤 Published role snapshot")
	return nil
}

func isNotFound(err error) bool {
	var respErr *github.ErrorResponse
	return errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound
}

func logGitHubError(err error, fields logrus.Fields) {
	if err == nil {
		return
	}
	entry := logrus.WithFields(fields)
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		entry = entry.WithFields(logrus.Fields{
			"status_code": respErr.Response.StatusCode,
			"message":     respErr.Message,
		})
		entry.Debug("GitHub API error")
		return
	}
	entry.WithError(err).Debug("GitHub API error")
}

// maxRateLimitWait bounds how long a publish waits for a rate limit reset.
const maxRateLimitWait = 30 * time.Second

func retryOnRateLimit(ctx context.Context, fn func() error) error {
	const maxRetries = 3
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		wait, ok := rateLimitWait(err)
		if !ok || attempt == maxRetries {
			return err
		}
		if wait > maxRateLimitWait {
			logrus.WithField("reset_in", wait.Round(time.Second)).Warn("⚠ GitHub rate limit resets too late to wait for")
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

func rateLimitWait(err error) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time)
		if wait < 0 {
			return 0, true
		}
		return wait, true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.GetRetryAfter(), true
	}
	return 0, false
}
