// Package classify implements the risk classifier: a pure function from
// (command, execution context, catalog) to a Classification.
//
// Classification never executes anything and never touches global state;
// calling it twice with identical inputs yields identical results.
package classify

import (
	"sort"
	"strings"

	"shellgate/internal/catalog"
	"shellgate/internal/shellparse"
	"shellgate/internal/target"
)

// Classification is the classifier's verdict on one command.
type Classification struct {
	// MatchedRules are all catalog rules that matched any segment, in
	// deterministic (rule ID) order.
	MatchedRules []*catalog.Rule
	// HighestSeverity is the max severity across matched rules, after the
	// parse-error upgrade.
	HighestSeverity catalog.Severity
	// UsesSudo / UsesRoot carry the resolver's privilege annotation.
	UsesSudo bool
	UsesRoot bool
	// ParseError reports that normalization hit trouble (unclosed quote);
	// the severity has been upgraded one step in response.
	ParseError bool
}

// TopRule returns a matched rule carrying the highest severity, or nil.
func (c Classification) TopRule() *catalog.Rule {
	for _, r := range c.MatchedRules {
		if r.Severity == c.HighestSeverity {
			return r
		}
	}
	if len(c.MatchedRules) > 0 {
		return c.MatchedRules[0]
	}
	return nil
}

// Category returns the category of the top rule, or empty.
func (c Classification) Category() catalog.Category {
	if r := c.TopRule(); r != nil {
		return r.Category
	}
	return ""
}

// Classify matches a command against the catalog in its execution context.
// Each chained segment is evaluated independently; severities combine by
// taking the maximum. Container-only rules activate only for container
// targets; host rules always apply, since a container may share host
// devices.
func Classify(cmd string, tctx target.Context, cat *catalog.Catalog) Classification {
	segments, parseErr := shellparse.Split(cmd)

	seen := make(map[string]bool)
	var matched []*catalog.Rule
	highest := catalog.SeverityNone

	record := func(rules []*catalog.Rule) {
		for _, rule := range rules {
			if rule.ContainerOnly && !tctx.Target.IsContainer() {
				continue
			}
			if !seen[rule.ID] {
				seen[rule.ID] = true
				matched = append(matched, rule)
			}
			if rule.Severity > highest {
				highest = rule.Severity
			}
		}
	}

	// Each segment is matched both as written and with leading VAR=value
	// assignments and sudo/doas wrappers stripped: `FOO=1 rm -rf /` and
	// `sudo rm -rf /` must classify like the underlying command, not slip
	// past the anchored rules.
	for _, seg := range segments {
		for _, form := range shellparse.ExpandForMatch(seg) {
			record(cat.Match(form))
		}
	}
	// Some shapes span segment boundaries (fork bombs, pipe-to-shell), so
	// the unsplit command is matched as well.
	for _, form := range shellparse.ExpandForMatch(strings.TrimSpace(cmd)) {
		record(cat.Match(form))
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if parseErr && highest < catalog.SeverityCritical {
		// Unparseable input gets one step of conservative upgrade rather
		// than a pass.
		highest++
	}

	return Classification{
		MatchedRules:    matched,
		HighestSeverity: highest,
		UsesSudo:        tctx.UsesSudo,
		UsesRoot:        tctx.UsesRoot,
		ParseError:      parseErr,
	}
}
