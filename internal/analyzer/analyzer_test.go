package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atheraber/saverbot/internal/config"
)

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) SummarizeReport(context.Context, string) (string, error) {
	return f.summary, f.err
}

// fakeGitHub serves a minimal subset of the GitHub REST API.
func fakeGitHub(t *testing.T, repoJSON string, contentsJSON string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/test/proj/contents/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, contentsJSON)
	})
	mux.HandleFunc("/repos/test/proj", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, repoJSON)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testAnalyzer(t *testing.T, baseURL string, summarizer Summarizer) *Analyzer {
	t.Helper()

	a, err := New(config.GitHubConfig{
		BaseURL:         baseURL,
		OpenIssuesAlert: 10,
	}, summarizer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	return a
}

const wellKeptRepo = `{
	"name": "proj",
	"full_name": "test/proj",
	"description": "A test project",
	"language": "Go",
	"stargazers_count": 123,
	"forks_count": 7,
	"open_issues_count": 3,
	"html_url": "https://github.com/test/proj"
}`

const wellKeptContents = `[
	{"name": "README.md", "type": "file"},
	{"name": "LICENSE", "type": "file"},
	{"name": ".gitignore", "type": "file"},
	{"name": ".github", "type": "dir"},
	{"name": "go.mod", "type": "file"}
]`

func TestAnalyzeWellKeptRepository(t *testing.T) {
	t.Parallel()

	srv := fakeGitHub(t, wellKeptRepo, wellKeptContents)
	a := testAnalyzer(t, srv.URL, nil)

	report, err := a.Analyze(context.Background(), "test", "proj")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.FullName != "test/proj" {
		t.Errorf("expected full name test/proj, got %q", report.FullName)
	}
	if report.Stars != 123 {
		t.Errorf("expected 123 stars, got %d", report.Stars)
	}
	if report.Language != "Go" {
		t.Errorf("expected language Go, got %q", report.Language)
	}
	if len(report.Suggestions) != 1 || !strings.Contains(report.Suggestions[0], "well organized") {
		t.Errorf("expected only the all-clear suggestion, got %v", report.Suggestions)
	}
}

func TestAnalyzeSuggestionsForBareRepository(t *testing.T) {
	t.Parallel()

	repoJSON := `{
		"name": "proj",
		"full_name": "test/proj",
		"language": "Python",
		"open_issues_count": 42
	}`
	srv := fakeGitHub(t, repoJSON, `[{"name": "main.py", "type": "file"}]`)
	a := testAnalyzer(t, srv.URL, nil)

	report, err := a.Analyze(context.Background(), "test", "proj")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	joined := strings.Join(report.Suggestions, "\n")
	for _, want := range []string{"README", "LICENSE", ".gitignore", "CI", "requirements.txt", "42 open issues"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected a suggestion mentioning %q, got:\n%s", want, joined)
		}
	}
}

func TestAnalyzeNotFound(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	a := testAnalyzer(t, srv.URL, nil)
	_, err := a.Analyze(context.Background(), "test", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalyzeAccessDenied(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Forbidden"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	a := testAnalyzer(t, srv.URL, nil)
	_, err := a.Analyze(context.Background(), "test", "proj")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestAnalyzeAttachesSummary(t *testing.T) {
	t.Parallel()

	srv := fakeGitHub(t, wellKeptRepo, wellKeptContents)
	a := testAnalyzer(t, srv.URL, &fakeSummarizer{summary: "tl;dr: solid project"})

	report, err := a.Analyze(context.Background(), "test", "proj")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.Summary != "tl;dr: solid project" {
		t.Errorf("expected summary to be attached, got %q", report.Summary)
	}
	if !strings.Contains(report.Format(), "tl;dr: solid project") {
		t.Error("expected formatted report to include the summary")
	}
}

func TestAnalyzeSummarizerFailureDegrades(t *testing.T) {
	t.Parallel()

	srv := fakeGitHub(t, wellKeptRepo, wellKeptContents)
	a := testAnalyzer(t, srv.URL, &fakeSummarizer{err: errors.New("model overloaded")})

	report, err := a.Analyze(context.Background(), "test", "proj")
	if err != nil {
		t.Fatalf("Analyze should succeed without a summary: %v", err)
	}
	if report.Summary != "" {
		t.Errorf("expected empty summary, got %q", report.Summary)
	}
}

func TestReportFormat(t *testing.T) {
	t.Parallel()

	r := &Report{
		FullName:    "test/proj",
		Description: "A test project",
		Language:    "Go",
		Stars:       5,
		Forks:       2,
		OpenIssues:  1,
		Suggestions: []string{"Add a LICENSE file to clarify usage terms."},
	}

	out := r.Format()
	for _, want := range []string{"test/proj", "A test project", "Stars: 5", "Forks: 2", "Open issues: 1", "Language: Go", "LICENSE"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted report missing %q:\n%s", want, out)
		}
	}
}
