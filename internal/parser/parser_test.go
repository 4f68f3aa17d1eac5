package parser

import "testing"

func TestClassifyCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Kind
	}{
		{"start", "/start", KindStart},
		{"help", "/help", KindHelp},
		{"stats", "/stats", KindStats},
		{"analyze without arg", "/analyze", KindAnalyze},
		{"command with bot suffix", "/start@saveruvidbot", KindStart},
		{"unknown command", "/frobnicate", KindUnsupported},
		{"unknown command with args", "/delete everything now", KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.text); got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.text, got.Kind, tt.want)
			}
		})
	}
}

func TestClassifyAnalyzeWithRepo(t *testing.T) {
	t.Parallel()

	got := Classify("/analyze https://github.com/golang/go")
	if got.Kind != KindAnalyze {
		t.Fatalf("expected KindAnalyze, got %v", got.Kind)
	}
	if got.Owner != "golang" || got.Repo != "go" {
		t.Errorf("expected golang/go, got %s/%s", got.Owner, got.Repo)
	}
}

func TestClassifyVideoURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		platform string
	}{
		{"youtube full", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "YouTube"},
		{"youtube short", "https://youtu.be/dQw4w9WgXcQ", "YouTube"},
		{"youtube mobile subdomain", "https://m.youtube.com/watch?v=abc", "YouTube"},
		{"youtube no scheme", "youtube.com/watch?v=abc", "YouTube"},
		{"instagram reel", "https://www.instagram.com/reel/xyz/", "Instagram"},
		{"facebook video", "https://www.facebook.com/watch/?v=123", "Facebook"},
		{"fb watch", "https://fb.watch/abc123/", "Facebook"},
		{"url inside text", "check this out https://youtu.be/abc please", "YouTube"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.text)
			if got.Kind != KindVideoURL {
				t.Fatalf("Classify(%q).Kind = %v, want KindVideoURL", tt.text, got.Kind)
			}
			if got.Platform != tt.platform {
				t.Errorf("Classify(%q).Platform = %q, want %q", tt.text, got.Platform, tt.platform)
			}
			if got.URL == "" {
				t.Error("expected normalized URL to be set")
			}
		})
	}
}

func TestClassifyRepoURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		owner string
		repo  string
	}{
		{"plain", "https://github.com/golang/go", "golang", "go"},
		{"git suffix", "https://github.com/golang/go.git", "golang", "go"},
		{"deep path", "https://github.com/golang/go/tree/master/src", "golang", "go"},
		{"www prefix", "https://www.github.com/golang/go", "golang", "go"},
		{"no scheme", "github.com/golang/go", "golang", "go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.text)
			if got.Kind != KindRepoURL {
				t.Fatalf("Classify(%q).Kind = %v, want KindRepoURL", tt.text, got.Kind)
			}
			if got.Owner != tt.owner || got.Repo != tt.repo {
				t.Errorf("Classify(%q) = %s/%s, want %s/%s", tt.text, got.Owner, got.Repo, tt.owner, tt.repo)
			}
		})
	}
}

func TestClassifyUnsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"plain text", "hello there"},
		{"unsupported host", "https://vimeo.com/12345"},
		{"lookalike host", "https://youtube.com.evil.example/watch?v=abc"},
		{"github user only", "https://github.com/golang"},
		{"ftp scheme", "ftp://youtube.com/video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.text); got.Kind != KindUnsupported {
				t.Errorf("Classify(%q).Kind = %v, want KindUnsupported", tt.text, got.Kind)
			}
		})
	}
}

// Classification is a pure function: the same input always yields the
// same result.
func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"/start",
		"https://youtu.be/abc",
		"https://github.com/golang/go",
		"random text",
	}

	for _, in := range inputs {
		first := Classify(in)
		for i := 0; i < 10; i++ {
			if got := Classify(in); got != first {
				t.Errorf("Classify(%q) is not deterministic: %+v vs %+v", in, first, got)
			}
		}
	}
}
