// Package catalog defines the declarative table of dangerous-command
// signatures consulted by the risk classifier.
//
// The catalog is built once at process start (builtin rules plus any
// config-supplied extensions) and is read-only for the rest of the session.
package catalog

import (
	"fmt"
	"regexp"
)

// Severity orders how bad a matched command shape is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase name used in output and the audit history.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

// ParseSeverity converts a config string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityNone, fmt.Errorf("unknown severity %q", s)
	}
}

// Category names the class of danger a rule detects.
type Category string

const (
	CategoryFilesystemDestruction Category = "filesystem-destruction"
	CategoryDiskDeviceAccess      Category = "disk-device-access"
	CategoryFilesystemFormat      Category = "filesystem-format"
	CategoryForkBomb              Category = "fork-bomb"
	CategoryPrivilegeEscalation   Category = "privilege-escalation"
	CategoryPermissionChange      Category = "permission-change"
	CategoryContainerEscape       Category = "container-escape"
	CategoryNetworkExfiltration   Category = "network-exfiltration"
)

// Rule is a single dangerous-command signature.
type Rule struct {
	// ID uniquely names the rule for output and the audit history.
	ID string
	// Category is the danger class.
	Category Category
	// Severity is the rule's standalone severity.
	Severity Severity
	// Pattern is the regex source; Compiled is its case-insensitive compile.
	Pattern  string
	Compiled *regexp.Regexp
	// Description explains the match to the user at prompt time.
	Description string
	// ContainerOnly rules are consulted only for container targets.
	ContainerOnly bool
	// Source is "builtin" or "config".
	Source string
}

// Catalog is the read-only rule table.
type Catalog struct {
	rules []*Rule
}

// New returns a catalog holding the builtin rules.
func New() *Catalog {
	return &Catalog{rules: builtinRules()}
}

// Extend appends config-supplied rules. Called once at startup, before any
// evaluation; invalid patterns are an error, not a silent skip.
func (c *Catalog) Extend(rules []RuleSpec) error {
	for _, spec := range rules {
		compiled, err := regexp.Compile("(?i)" + spec.Pattern)
		if err != nil {
			return fmt.Errorf("rule %s: compiling pattern %q: %w", spec.ID, spec.Pattern, err)
		}
		sev, err := ParseSeverity(spec.Severity)
		if err != nil {
			return fmt.Errorf("rule %s: %w", spec.ID, err)
		}
		c.rules = append(c.rules, &Rule{
			ID:            spec.ID,
			Category:      Category(spec.Category),
			Severity:      sev,
			Pattern:       spec.Pattern,
			Compiled:      compiled,
			Description:   spec.Description,
			ContainerOnly: spec.ContainerOnly,
			Source:        "config",
		})
	}
	return nil
}

// RuleSpec is the external (config file) form of a rule.
type RuleSpec struct {
	ID            string `toml:"id"`
	Pattern       string `toml:"pattern"`
	Category      string `toml:"category"`
	Severity      string `toml:"severity"`
	Description   string `toml:"description"`
	ContainerOnly bool   `toml:"container_only"`
}

// Match returns every rule whose pattern matches the given segment.
// Container-only filtering is the classifier's job, not the catalog's.
func (c *Catalog) Match(segment string) []*Rule {
	var matched []*Rule
	for _, r := range c.rules {
		if r.Compiled.MatchString(segment) {
			matched = append(matched, r)
		}
	}
	return matched
}

// Rules returns the full rule table in declaration order.
func (c *Catalog) Rules() []*Rule {
	out := make([]*Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Len reports the number of rules.
func (c *Catalog) Len() int { return len(c.rules) }

func mustRule(id string, cat Category, sev Severity, pattern, desc string) *Rule {
	return compileRule(id, cat, sev, pattern, desc, false)
}

func mustContainerRule(id string, cat Category, sev Severity, pattern, desc string) *Rule {
	return compileRule(id, cat, sev, pattern, desc, true)
}

func compileRule(id string, cat Category, sev Severity, pattern, desc string, containerOnly bool) *Rule {
	compiled, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		// Builtin patterns must always be valid.
		panic(fmt.Sprintf("invalid builtin pattern %q: %v", pattern, err))
	}
	return &Rule{
		ID:            id,
		Category:      cat,
		Severity:      sev,
		Pattern:       pattern,
		Compiled:      compiled,
		Description:   desc,
		ContainerOnly: containerOnly,
		Source:        "builtin",
	}
}

// builtinRules is the default signature table. Rules are anchored to
// destructive argument shapes, not bare command names: `rm file.txt` and
// `ls -l /` must never match.
func builtinRules() []*Rule {
	return []*Rule{
		// Recursive/force deletion of root-adjacent or home paths.
		// Target paths may be quoted and flags like --no-preserve-root may
		// trail the path; neither downgrades the match.
		mustRule("rm-root", CategoryFilesystemDestruction, SeverityCritical,
			`^rm\s+(-\w*[rf]\w*\s+)+(-+[\w-]+\s+)*["']?(/|/\*)["']?\s*(-+[\w-]+\s*)*$`,
			"recursive force-delete of the filesystem root"),
		mustRule("rm-system-dir", CategoryFilesystemDestruction, SeverityCritical,
			`^rm\s+(-\w*[rf]\w*\s+)+(-+[\w-]+\s+)*["']?/(boot|bin|dev|etc|home|lib|lib64|opt|proc|root|run|sbin|srv|sys|usr|var)\b`,
			"recursive force-delete of a system directory"),
		mustRule("rm-home", CategoryFilesystemDestruction, SeverityCritical,
			`^rm\s+(-\w*[rf]\w*\s+)+(-+[\w-]+\s+)*["']?(~|\$HOME)(/\*?)?["']?\s*(-+[\w-]+\s*)*$`,
			"recursive force-delete of the home directory"),
		mustRule("rm-recursive", CategoryFilesystemDestruction, SeverityMedium,
			`^rm\s+(-\w*r\w*\s+)`,
			"recursive delete"),
		mustRule("find-delete-root", CategoryFilesystemDestruction, SeverityHigh,
			`^find\s+(/|~)\s+.*-delete`,
			"find -delete sweeping from root or home"),
		mustRule("mv-root", CategoryFilesystemDestruction, SeverityCritical,
			`^mv\s+/\s+`,
			"moving the filesystem root"),

		// Raw device writes.
		mustRule("dd-device", CategoryDiskDeviceAccess, SeverityCritical,
			`\bdd\b.*\bof=/dev/`,
			"dd writing directly to a block device"),
		mustRule("redirect-device", CategoryDiskDeviceAccess, SeverityCritical,
			`>\s*/dev/(sd|hd|nvme|vd|mmcblk)\w*`,
			"shell redirect into a block device"),
		mustRule("shred-device", CategoryDiskDeviceAccess, SeverityCritical,
			`^shred\s+.*/dev/`,
			"shredding a raw device"),

		// Filesystem formatting / partitioning.
		mustRule("mkfs", CategoryFilesystemFormat, SeverityCritical,
			`^mkfs(\.\w+)?\s+`,
			"creating a filesystem over existing data"),
		mustRule("fdisk", CategoryFilesystemFormat, SeverityHigh,
			`^(fdisk|parted|sgdisk)\s+/dev/`,
			"partition table manipulation"),
		mustRule("wipefs", CategoryFilesystemFormat, SeverityCritical,
			`^wipefs\s+`,
			"wiping filesystem signatures"),

		// Fork bombs.
		mustRule("fork-bomb", CategoryForkBomb, SeverityCritical,
			`:\s*\(\s*\)\s*\{.*:\s*\|\s*:.*\}\s*;?\s*:`,
			"classic fork bomb"),
		mustRule("fork-bomb-generic", CategoryForkBomb, SeverityHigh,
			`\w+\s*\(\s*\)\s*\{\s*\w+\s*\|\s*\w+\s*&\s*\}`,
			"self-piping recursive function"),

		// Privilege escalation. Low on its own; the policy overlay decides
		// how loudly to surface it per mode.
		mustRule("sudo", CategoryPrivilegeEscalation, SeverityLow,
			`^(sudo|doas)\s+`,
			"privilege escalation"),
		mustRule("su-root", CategoryPrivilegeEscalation, SeverityLow,
			`^su\s*(-|root)?\s*$`,
			"switching to the root account"),

		// World-writable permission grants on sensitive paths.
		mustRule("chmod-777-system", CategoryPermissionChange, SeverityHigh,
			`^chmod\s+(-\w+\s+)*(a\+w|o\+w|777|666)\s+(/|/etc|/usr|/var|/boot|/bin|/sbin)\b`,
			"world-writable permissions on a system path"),
		mustRule("chmod-recursive-root", CategoryPermissionChange, SeverityHigh,
			`^chmod\s+-\w*R\w*\s+.*\s/(etc|usr|var|boot|bin|sbin)\b`,
			"recursive permission change on a system path"),
		mustRule("chown-recursive-root", CategoryPermissionChange, SeverityMedium,
			`^chown\s+-\w*R\w*\s+.*\s/(etc|usr|var|boot|bin|sbin)\b`,
			"recursive ownership change on a system path"),

		// Network exfiltration / pipe-to-shell.
		mustRule("curl-pipe-shell", CategoryNetworkExfiltration, SeverityHigh,
			`(curl|wget)\s[^|;]*\|\s*(ba|z|da|fi)?sh\b`,
			"piping a remote download into a shell"),
		mustRule("netcat-exec", CategoryNetworkExfiltration, SeverityHigh,
			`\bnc\b.*\s-e\s*/`,
			"netcat with command execution"),
		mustRule("dev-tcp", CategoryNetworkExfiltration, SeverityMedium,
			`/dev/tcp/`,
			"raw TCP redirection"),

		// Container-escape shapes: only meaningful when the gate is pointed
		// at a container backend, where the model could ask the backend to
		// mount the host root back in.
		mustContainerRule("mount-host-root", CategoryContainerEscape, SeverityCritical,
			`(docker|podman)\s+run\s.*-v\s+/:(/|\S)`,
			"bind-mounting the host root into a container"),
		mustContainerRule("privileged-container", CategoryContainerEscape, SeverityHigh,
			`(docker|podman)\s+run\s.*--privileged`,
			"starting a privileged container"),
		mustContainerRule("nsenter-host", CategoryContainerEscape, SeverityCritical,
			`^nsenter\s+.*(-t\s*1|--target[= ]1)\b`,
			"entering the host PID namespace"),
	}
}
