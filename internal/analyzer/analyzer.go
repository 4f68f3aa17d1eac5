// Package analyzer inspects GitHub repositories and produces a short report
// with metadata and housekeeping suggestions.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v69/github"

	"github.com/atheraber/saverbot/internal/config"
)

// Failure reasons surfaced to users.
var (
	ErrNotFound     = errors.New("repository not found")
	ErrAccessDenied = errors.New("access denied or API rate limit exceeded")
)

// Report holds the outcome of analyzing one repository.
type Report struct {
	Owner       string
	Name        string
	FullName    string
	Description string
	Language    string
	Stars       int
	Forks       int
	OpenIssues  int
	URL         string

	Suggestions []string
	RootFiles   []string

	// Summary is an optional AI-generated condensation of the report,
	// empty when the summarizer is not configured or failed.
	Summary string
}

// Summarizer condenses a formatted report. Implementations may fail freely;
// analysis succeeds without a summary.
type Summarizer interface {
	SummarizeReport(ctx context.Context, report string) (string, error)
}

// Analyzer fetches repository metadata and derives suggestions from it.
type Analyzer struct {
	client          *github.Client
	logger          *slog.Logger
	summarizer      Summarizer
	openIssuesAlert int
}

// New creates an Analyzer. The token is optional and only raises the API
// rate limit. summarizer may be nil.
func New(cfg config.GitHubConfig, summarizer Summarizer, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client := github.NewClient(nil)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		client.BaseURL = base
	}

	return &Analyzer{
		client:          client,
		logger:          logger.With("component", "analyzer"),
		summarizer:      summarizer,
		openIssuesAlert: cfg.OpenIssuesAlert,
	}, nil
}

// Analyze fetches metadata and the root directory listing for owner/repo and
// builds a report. When a summarizer is configured, its summary is attached
// within the same call; summarizer failures degrade to the plain report.
func (a *Analyzer) Analyze(ctx context.Context, owner, repo string) (*Report, error) {
	a.logger.InfoContext(ctx, "Analyzing repository", "owner", owner, "repo", repo)

	repoData, _, err := a.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, a.classifyAPIError(ctx, err, owner, repo)
	}

	report := &Report{
		Owner:       owner,
		Name:        repoData.GetName(),
		FullName:    repoData.GetFullName(),
		Description: repoData.GetDescription(),
		Language:    repoData.GetLanguage(),
		Stars:       repoData.GetStargazersCount(),
		Forks:       repoData.GetForksCount(),
		OpenIssues:  repoData.GetOpenIssuesCount(),
		URL:         repoData.GetHTMLURL(),
	}

	// Root listing failures only cost the file-based suggestions.
	_, rootContents, _, err := a.client.Repositories.GetContents(ctx, owner, repo, "", nil)
	if err != nil {
		a.logger.WarnContext(ctx, "Failed to list repository root, skipping file checks",
			"owner", owner, "repo", repo, "error", err)
	} else {
		for _, entry := range rootContents {
			report.RootFiles = append(report.RootFiles, entry.GetName())
		}
	}

	report.Suggestions = a.suggestions(report, err == nil)

	if a.summarizer != nil {
		summary, sumErr := a.summarizer.SummarizeReport(ctx, report.Format())
		if sumErr != nil {
			a.logger.WarnContext(ctx, "Report summarization failed, returning plain report",
				"owner", owner, "repo", repo, "error", sumErr)
		} else {
			report.Summary = summary
		}
	}

	a.logger.InfoContext(ctx, "Repository analysis completed",
		"repo", report.FullName, "suggestions", len(report.Suggestions))
	return report, nil
}

func (a *Analyzer) classifyAPIError(ctx context.Context, err error, owner, repo string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			a.logger.InfoContext(ctx, "Repository not found", "owner", owner, "repo", repo)
			return ErrNotFound
		case http.StatusForbidden:
			a.logger.WarnContext(ctx, "GitHub API access denied", "owner", owner, "repo", repo)
			return ErrAccessDenied
		}
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		a.logger.WarnContext(ctx, "GitHub API rate limit exceeded", "owner", owner, "repo", repo)
		return ErrAccessDenied
	}

	a.logger.ErrorContext(ctx, "GitHub API call failed", "owner", owner, "repo", repo, "error", err)
	return fmt.Errorf("failed to fetch repository: %w", err)
}

// suggestions derives housekeeping advice from repository metadata and the
// root file listing.
func (a *Analyzer) suggestions(r *Report, haveListing bool) []string {
	var out []string

	if haveListing {
		names := make(map[string]bool, len(r.RootFiles))
		hasReadme := false
		for _, f := range r.RootFiles {
			lower := strings.ToLower(f)
			names[lower] = true
			if strings.HasPrefix(lower, "readme") {
				hasReadme = true
			}
		}

		if !hasReadme {
			out = append(out, "Add a README to describe the project.")
		}
		if !names["license"] && !names["license.md"] && !names["license.txt"] && !names["copying"] {
			out = append(out, "Add a LICENSE file to clarify usage terms.")
		}
		if !names[".gitignore"] {
			out = append(out, "Add a .gitignore to keep build artifacts out of the repository.")
		}
		if !names[".github"] && !names[".travis.yml"] && !names["jenkinsfile"] && !names[".gitlab-ci.yml"] {
			out = append(out, "Set up CI to run tests automatically.")
		}

		switch r.Language {
		case "Python":
			if !names["requirements.txt"] && !names["pyproject.toml"] && !names["setup.py"] {
				out = append(out, "Declare Python dependencies in requirements.txt or pyproject.toml.")
			}
		case "JavaScript", "TypeScript":
			if !names["package.json"] {
				out = append(out, "Add a package.json to declare dependencies.")
			}
		case "Go":
			if !names["go.mod"] {
				out = append(out, "Initialize a Go module with go.mod.")
			}
		case "Java":
			if !names["pom.xml"] && !names["build.gradle"] && !names["build.gradle.kts"] {
				out = append(out, "Add a Maven or Gradle build file.")
			}
		}
	}

	if a.openIssuesAlert > 0 && r.OpenIssues > a.openIssuesAlert {
		out = append(out, fmt.Sprintf("There are %d open issues. Consider triaging them.", r.OpenIssues))
	}

	if len(out) == 0 {
		out = append(out, "Repository looks well organized. Nothing to flag.")
	}
	return out
}
