package confirm

import (
	"context"
	"strings"
	"testing"

	"shellgate/internal/catalog"
	"shellgate/internal/classify"
	"shellgate/internal/policy"
	"shellgate/internal/shellparse"
	"shellgate/internal/testutil"
)

func TestSessionCache(t *testing.T) {
	s := NewSession()

	fp := shellparse.Fingerprint("rm -rf ./build", "host")
	if s.Approved(fp) {
		t.Fatal("fresh session should approve nothing")
	}

	s.Remember(fp)
	if !s.Approved(fp) {
		t.Fatal("remembered fingerprint should be approved")
	}

	// A command differing only by an added flag has a different
	// fingerprint and misses the cache.
	other := shellparse.Fingerprint("rm -rf ./build --verbose", "host")
	if s.Approved(other) {
		t.Fatal("modified command must not hit the session cache")
	}

	// Same text on a different target also misses.
	elsewhere := shellparse.Fingerprint("rm -rf ./build", "docker:dev")
	if s.Approved(elsewhere) {
		t.Fatal("different target must not hit the session cache")
	}

	if s.Len() != 1 {
		t.Fatalf("session cache len = %d, want 1", s.Len())
	}
}

// A prompter without a terminal fails closed: Rejected, not hang, not
// approve.
func TestTerminalPrompterNoTTY(t *testing.T) {
	p := NewTerminalPrompter(testutil.TestLogger(t))
	p.isTerminal = func() bool { return false }

	res, err := p.Resolve(context.Background(), Request{Command: "rm -rf /"})
	testutil.RequireNoError(t, err, "Resolve without TTY")
	testutil.RequireEqual(t, Rejected, res, "no-TTY resolution")
}

func TestRenderPromptSanitizesControlChars(t *testing.T) {
	req := Request{
		Command: "echo \x1b[31mhi\x07",
		Target:  "host",
		Classification: classify.Classification{
			MatchedRules: []*catalog.Rule{{
				ID:          "test",
				Category:    catalog.CategoryFilesystemDestruction,
				Severity:    catalog.SeverityCritical,
				Description: "test rule",
			}},
			HighestSeverity: catalog.SeverityCritical,
		},
		Decision: policy.Decision{Kind: policy.PromptUser, Reason: "test reason"},
	}

	view := renderPrompt(req, 80)
	if strings.Contains(view, "\x07") {
		t.Error("prompt must strip bell characters from command text")
	}
	if !strings.Contains(view, "CRITICAL") {
		t.Error("prompt should render the severity badge")
	}
	if !strings.Contains(view, "test reason") {
		t.Error("prompt should render the decision reason")
	}
}

func TestResolutionStrings(t *testing.T) {
	testutil.RequireEqual(t, "approved", Approved.String(), "Approved")
	testutil.RequireEqual(t, "rejected", Rejected.String(), "Rejected")
	testutil.RequireEqual(t, "approved-for-session", ApprovedForSession.String(), "ApprovedForSession")
}
