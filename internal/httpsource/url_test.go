package httpsource

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestEnsureDirectory(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"path trailing slash", "https://example.net/a/b/c/", "https://example.net/a/b/c/"},
		{"path no trailing slash", "https://example.net/a/b/c", "https://example.net/a/b/c/"},
		{"root trailing slash", "https://example.net/", "https://example.net/"},
		{"root no trailing slash", "https://example.net", "https://example.net/"},
		{"query trailing slash", "https://example.net/a/b/c/?query=asdf", "https://example.net/a/b/c/?query=asdf"},
		{"query no trailing slash", "https://example.net/a/b/c?query=asdf", "https://example.net/a/b/c/?query=asdf"},
		{"fragment trailing slash", "https://example.net/a/b/c/#fragment", "https://example.net/a/b/c/#fragment"},
		{"fragment no trailing slash", "https://example.net/a/b/c#fragment", "https://example.net/a/b/c/#fragment"},
		{"mailto", "mailto:user@example.com", "mailto:user@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnsureDirectory(mustParse(t, tt.in))
			if got.String() != tt.want {
				t.Errorf("EnsureDirectory(%q) = %q, want %q", tt.in, got.String(), tt.want)
			}
		})
	}
}
