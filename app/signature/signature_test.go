package signature

import (
	"strings"
	"testing"
)

func TestGenerateLength(t *testing.T) {
	sig, err := Generate("github-torvalds-linux", "2024-02-10", "my-secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sig) != 16 {
		t.Errorf("Expected 16 character signature, got %d", len(sig))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := Generate("id-1", "2024-02-10", "key")
	b, _ := Generate("id-1", "2024-02-10", "key")
	if a != b {
		t.Errorf("Same inputs produced different signatures: %q vs %q", a, b)
	}
}

func TestGenerateVariesWithInputs(t *testing.T) {
	base, _ := Generate("id-1", "2024-02-10", "key")

	otherID, _ := Generate("id-2", "2024-02-10", "key")
	if base == otherID {
		t.Errorf("Different content ID produced same signature")
	}

	otherDate, _ := Generate("id-1", "2024-02-11", "key")
	if base == otherDate {
		t.Errorf("Different date produced same signature")
	}

	otherKey, _ := Generate("id-1", "2024-02-10", "other-key")
	if base == otherKey {
		t.Errorf("Different key produced same signature")
	}
}

func TestGenerateEmptyKey(t *testing.T) {
	if _, err := Generate("id", "2024-02-10", ""); err == nil {
		t.Errorf("Expected error for empty key")
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	sig, _ := Generate("github-torvalds-linux", "2024-02-10", "my-secret")

	if !Verify("github-torvalds-linux", "2024-02-10", sig, "my-secret") {
		t.Errorf("Valid signature failed verification")
	}
	if Verify("github-torvalds-linux", "2024-02-10", "0000000000000000", "my-secret") {
		t.Errorf("Forged signature passed verification")
	}
	if Verify("github-torvalds-linux", "2024-02-11", sig, "my-secret") {
		t.Errorf("Signature for different date passed verification")
	}
	if Verify("github-torvalds-linux", "2024-02-10", sig, "") {
		t.Errorf("Verification with empty key should fail")
	}
}

func TestActionURL(t *testing.T) {
	got, err := ActionURL("https://user.github.io/ai-digest", "star",
		"github-torvalds-linux", "linux kernel", "https://github.com/torvalds/linux",
		"github", "2024-02-10", "my-secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(got, "https://user.github.io/ai-digest/star?id=github-torvalds-linux") {
		t.Errorf("Unexpected URL prefix: %q", got)
	}
	if !strings.Contains(got, "title=linux+kernel") {
		t.Errorf("Title not escaped in URL: %q", got)
	}
	if !strings.Contains(got, "url=https%3A%2F%2Fgithub.com%2Ftorvalds%2Flinux") {
		t.Errorf("Target URL not escaped: %q", got)
	}
	if !strings.Contains(got, "&t=") {
		t.Errorf("Signature parameter missing: %q", got)
	}
}

func TestActionURLEmptyKey(t *testing.T) {
	if _, err := ActionURL("https://x", "star", "id", "t", "u", "github", "2024-02-10", ""); err == nil {
		t.Errorf("Expected error for empty key")
	}
}
