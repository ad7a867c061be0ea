package antispam

import (
	"testing"

	"sweeper/internal/storage"

	"go.uber.org/zap"
)

func TestMatcherSkipsDisabledAndInvalid(t *testing.T) {
	matcher := NewMatcher([]storage.SpamService{
		{ID: 1, Name: "discord", Regex: `(discord\.gg|discordapp\.com/invite)/[a-zA-Z0-9-]+`, Enabled: true},
		{ID: 2, Name: "disabled", Regex: `example\.com`, Enabled: false},
		{ID: 3, Name: "broken", Regex: `(`, Enabled: true},
	}, zap.NewNop())

	if matcher.Len() != 1 {
		t.Fatalf("expected 1 compiled service, got %d", matcher.Len())
	}

	match, ok := matcher.Match("https://discord.gg/abc123")
	if !ok {
		t.Fatal("invite URL should match the discord service")
	}
	if match.ServiceID != 1 || match.Text != "discord.gg/abc123" {
		t.Fatalf("unexpected match: %+v", match)
	}

	if _, ok := matcher.Match("https://example.com/page"); ok {
		t.Fatal("disabled service must not match")
	}
}

func TestMatcherFirstServiceWins(t *testing.T) {
	matcher := NewMatcher([]storage.SpamService{
		{ID: 1, Name: "first", Regex: `spam\.example/[a-z]+`, Enabled: true},
		{ID: 2, Name: "second", Regex: `spam\.example`, Enabled: true},
	}, zap.NewNop())

	match, ok := matcher.Match("http://spam.example/abc")
	if !ok || match.ServiceID != 1 {
		t.Fatalf("expected first service to win, got %+v ok=%t", match, ok)
	}
}

func TestIsInviteService(t *testing.T) {
	if !IsInviteService(Match{ServiceID: 1, ServiceName: "whatever"}) {
		t.Fatal("service id 1 is the invite service")
	}
	if !IsInviteService(Match{ServiceID: 7, ServiceName: "Discord"}) {
		t.Fatal("name match should be case insensitive")
	}
	if IsInviteService(Match{ServiceID: 7, ServiceName: "twitch"}) {
		t.Fatal("other services are not invite services")
	}
}

func TestInviteCode(t *testing.T) {
	cases := map[string]string{
		"discord.gg/abc123":             "abc123",
		"discordapp.com/invite/xYz-9":   "xYz-9",
		"discord.gg/nested/deep/final1": "final1",
		"abc123":                        "abc123",
	}
	for in, want := range cases {
		if got := InviteCode(in); got != want {
			t.Errorf("InviteCode(%q) = %q, want %q", in, got, want)
		}
	}
}
