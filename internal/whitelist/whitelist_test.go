package whitelist

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsProtected(t *testing.T) {
	checker := NewChecker([]string{"Example.com", " bank.example "}, zap.NewNop())

	tests := []struct {
		name string
		from string
		want bool
	}{
		{"bare address match", "alice@example.com", true},
		{"case-insensitive domain", "alice@EXAMPLE.COM", true},
		{"display-name form", "Alice Smith <alice@bank.example>", true},
		{"unlisted domain", "bob@other.example", false},
		{"subdomain is not the domain", "bob@mail.example.com", false},
		{"no address at all", "not an email header", false},
		{"empty sender", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsProtected(tt.from); got != tt.want {
				t.Errorf("IsProtected(%q) = %v, want %v", tt.from, got, tt.want)
			}
		})
	}
}

func TestEmptyListProtectsNothing(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	if checker.IsProtected("alice@example.com") {
		t.Errorf("empty checker protected a sender")
	}
}
