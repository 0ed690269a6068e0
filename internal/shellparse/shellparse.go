// Package shellparse implements lexical normalization of candidate shell
// commands: compound-command splitting, token extraction, and fingerprinting.
//
// Nothing here executes anything or touches the filesystem. The gate's
// classifier and session cache both depend on this package producing the
// same output for the same input every time.
package shellparse

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// Split breaks a command into its chained segments, splitting on `&&`, `||`,
// `;` and `|` outside of quotes. The returned bool reports a parse problem
// (unclosed quote); callers are expected to treat that conservatively.
func Split(cmd string) ([]string, bool) {
	var segments []string
	var current strings.Builder
	inSingle := false
	inDouble := false

	flush := func() {
		seg := strings.TrimSpace(current.String())
		if seg != "" {
			segments = append(segments, seg)
		}
		current.Reset()
	}

	runes := []rune(cmd)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if ch == '\'' && !inDouble {
			inSingle = !inSingle
			current.WriteRune(ch)
			continue
		}
		if ch == '"' && !inSingle {
			inDouble = !inDouble
			current.WriteRune(ch)
			continue
		}
		if inSingle || inDouble {
			current.WriteRune(ch)
			continue
		}

		switch {
		case ch == '&' && i+1 < len(runes) && runes[i+1] == '&':
			flush()
			i++
		case ch == '|' && i+1 < len(runes) && runes[i+1] == '|':
			flush()
			i++
		case ch == '|':
			flush()
		case ch == ';':
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	parseErr := inSingle || inDouble
	return segments, parseErr
}

// FirstToken returns the first meaningful token of a segment: leading
// whitespace and VAR=value environment assignments are skipped. Tokenization
// goes through go-shellwords so quoting is honored; on a tokenizer error it
// falls back to whitespace fields.
func FirstToken(segment string) string {
	tokens, err := shellwords.Parse(segment)
	if err != nil {
		tokens = strings.Fields(segment)
	}
	for _, tok := range tokens {
		if isEnvAssignment(tok) {
			continue
		}
		return tok
	}
	return ""
}

func isEnvAssignment(tok string) bool {
	eq := strings.Index(tok, "=")
	if eq <= 0 {
		return false
	}
	for _, r := range tok[:eq] {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// ExpandForMatch returns the segment together with progressively unwrapped
// forms: leading VAR=value assignments and privilege wrappers (sudo, doas)
// are stripped one layer at a time so anchored patterns still see the
// underlying command. The original segment is always the first form.
func ExpandForMatch(segment string) []string {
	forms := []string{segment}
	cur := segment
	for {
		next, ok := stripWrapper(cur)
		if !ok {
			return forms
		}
		cur = next
		forms = append(forms, cur)
	}
}

// stripWrapper removes one leading env assignment or privilege wrapper,
// including the wrapper's own option flags.
func stripWrapper(seg string) (string, bool) {
	s := strings.TrimSpace(seg)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return seg, false
	}
	head, rest := s[:i], strings.TrimLeft(s[i:], " \t")
	switch {
	case isEnvAssignment(head):
		return rest, true
	case head == "sudo" || head == "doas":
		for strings.HasPrefix(rest, "-") {
			j := strings.IndexAny(rest, " \t")
			if j < 0 {
				return seg, false
			}
			rest = strings.TrimLeft(rest[j:], " \t")
		}
		if rest == "" {
			return seg, false
		}
		return rest, true
	}
	return seg, false
}

// Normalize collapses runs of whitespace and rejoins the command's segments
// with a canonical separator. Two commands that differ only in incidental
// whitespace normalize identically; any other textual difference survives.
func Normalize(cmd string) string {
	segments, _ := Split(cmd)
	normalized := make([]string, 0, len(segments))
	for _, seg := range segments {
		normalized = append(normalized, strings.Join(strings.Fields(seg), " "))
	}
	return strings.Join(normalized, " && ")
}

// Fingerprint returns a stable hex digest identifying a command on a given
// target. The session override cache keys on this, so anything that should
// force re-evaluation (different text, different target) must change it.
func Fingerprint(cmd, target string) string {
	h := sha256.New()
	h.Write([]byte(Normalize(cmd)))
	h.Write([]byte{0})
	h.Write([]byte(target))
	return hex.EncodeToString(h.Sum(nil))
}
