// Package parser classifies inbound message text into bot actions: commands,
// supported video URLs, GitHub repository URLs, or unsupported input.
// Classification is deterministic and free of side effects.
package parser

import (
	"net/url"
	"strings"
)

// Kind identifies what a piece of message text asks the bot to do.
type Kind int

const (
	KindUnsupported Kind = iota
	KindStart
	KindHelp
	KindStats
	KindAnalyze
	KindVideoURL
	KindRepoURL
)

// String returns a short name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindHelp:
		return "help"
	case KindStats:
		return "stats"
	case KindAnalyze:
		return "analyze"
	case KindVideoURL:
		return "video_url"
	case KindRepoURL:
		return "repo_url"
	default:
		return "unsupported"
	}
}

// Result is the outcome of classifying one message.
type Result struct {
	Kind     Kind
	URL      string // normalized URL for video downloads
	Platform string // human-readable platform name for video downloads
	Owner    string // repository owner for analysis
	Repo     string // repository name for analysis
}

// Supported video hosts mapped to their display names. Subdomains of these
// hosts are accepted as well.
var videoPlatforms = map[string]string{
	"youtube.com":   "YouTube",
	"youtu.be":      "YouTube",
	"instagram.com": "Instagram",
	"facebook.com":  "Facebook",
	"fb.watch":      "Facebook",
}

// Classify inspects message text and decides what action it requests.
// Unknown slash commands are unsupported input, not errors.
func Classify(text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Kind: KindUnsupported}
	}

	if strings.HasPrefix(text, "/") {
		return classifyCommand(text)
	}

	for _, field := range strings.Fields(text) {
		if res, ok := classifyURL(field); ok {
			return res
		}
	}

	return Result{Kind: KindUnsupported}
}

func classifyCommand(text string) Result {
	fields := strings.Fields(text)
	cmd := fields[0]

	// Commands may carry the bot username suffix in group chats.
	if idx := strings.Index(cmd, "@"); idx != -1 {
		cmd = cmd[:idx]
	}

	switch cmd {
	case "/start":
		return Result{Kind: KindStart}
	case "/help":
		return Result{Kind: KindHelp}
	case "/stats":
		return Result{Kind: KindStats}
	case "/analyze":
		res := Result{Kind: KindAnalyze}
		if len(fields) > 1 {
			if owner, repo, ok := ParseRepoURL(fields[1]); ok {
				res.Owner = owner
				res.Repo = repo
			}
		}
		return res
	default:
		return Result{Kind: KindUnsupported}
	}
}

func classifyURL(raw string) (Result, bool) {
	u, ok := parseURL(raw)
	if !ok {
		return Result{}, false
	}

	host := normalizeHost(u.Host)

	if host == "github.com" || strings.HasSuffix(host, ".github.com") {
		if owner, repo, ok := ParseRepoURL(raw); ok {
			return Result{Kind: KindRepoURL, Owner: owner, Repo: repo}, true
		}
		return Result{}, false
	}

	for domain, platform := range videoPlatforms {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return Result{Kind: KindVideoURL, URL: u.String(), Platform: platform}, true
		}
	}

	return Result{}, false
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
// Trailing ".git", deeper path segments, and query strings are ignored.
func ParseRepoURL(raw string) (owner, repo string, ok bool) {
	u, parsed := parseURL(raw)
	if !parsed {
		return "", "", false
	}

	host := normalizeHost(u.Host)
	if host != "github.com" {
		return "", "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return "", "", false
	}

	owner = segments[0]
	repo = strings.TrimSuffix(segments[1], ".git")
	if repo == "" {
		return "", "", false
	}
	return owner, repo, true
}

func parseURL(raw string) (*url.URL, bool) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}
