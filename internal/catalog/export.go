package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Export is the serialized rule table for external tools.
type Export struct {
	Version     string       `json:"version"`
	GeneratedAt time.Time    `json:"generated_at"`
	SHA256      string       `json:"sha256"`
	Rules       []RuleExport `json:"rules"`
	RuleCount   int          `json:"rule_count"`
}

// RuleExport is a single rule in export form.
type RuleExport struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Severity      string `json:"severity"`
	Pattern       string `json:"pattern"`
	Description   string `json:"description,omitempty"`
	ContainerOnly bool   `json:"container_only,omitempty"`
	Source        string `json:"source"`
}

// Export returns the rule table in a deterministic, hashable form.
func (c *Catalog) Export() *Export {
	rules := make([]RuleExport, 0, len(c.rules))
	for _, r := range c.rules {
		rules = append(rules, RuleExport{
			ID:            r.ID,
			Category:      string(r.Category),
			Severity:      r.Severity.String(),
			Pattern:       r.Pattern,
			Description:   r.Description,
			ContainerOnly: r.ContainerOnly,
			Source:        r.Source,
		})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	return &Export{
		Version:     "1",
		GeneratedAt: time.Now().UTC(),
		SHA256:      c.Hash(),
		Rules:       rules,
		RuleCount:   len(rules),
	}
}

// Hash returns a deterministic digest of the rule table, used to detect
// catalog drift between what was reviewed and what is loaded.
func (c *Catalog) Hash() string {
	lines := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		lines = append(lines, fmt.Sprintf("%s:%s:%s:%s", r.ID, r.Category, r.Severity, r.Pattern))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ExportJSON returns the rule table as indented JSON.
func (c *Catalog) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(c.Export(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
