package exclude

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Option configures a Matcher.
type Option func(*Matcher)

// WithCaseSensitive switches glob and token matching to exact case.
// Path rules follow the same policy. The default is case-insensitive.
func WithCaseSensitive(sensitive bool) Option {
	return func(m *Matcher) {
		m.caseSensitive = sensitive
	}
}

// Matcher is a compiled rule set. It is immutable after construction and safe
// for concurrent use.
type Matcher struct {
	caseSensitive bool
	rules         []Rule
	paths         []string
	globs         []*regexp.Regexp
	tokens        map[string]struct{}
}

// NewMatcher compiles rules. Invalid rules are reported together; the returned
// matcher still holds every valid rule so callers may choose to proceed.
func NewMatcher(rules []Rule, opts ...Option) (*Matcher, error) {
	m := &Matcher{tokens: make(map[string]struct{})}

	for _, opt := range opts {
		opt(m)
	}

	var errs []error

	for _, rule := range rules {
		if err := m.add(rule); err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", rule.String(), err))
		}
	}

	return m, errors.Join(errs...)
}

// IsExcluded compiles rules case-insensitively and evaluates one entry.
// Invalid rules are ignored.
func IsExcluded(rules []Rule, name, fullPath string) bool {
	m, _ := NewMatcher(rules)

	return m.IsExcluded(name, fullPath)
}

func (m *Matcher) add(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	switch rule.Kind {
	case AbsolutePath:
		p := m.fold(strings.TrimRight(NormalizePath(rule.Value), "/"))
		m.paths = append(m.paths, p)
	case Glob:
		re, err := compileGlob(m.fold(rule.Value), m.caseSensitive)
		if err != nil {
			return err
		}

		m.globs = append(m.globs, re)
	case Token:
		m.tokens[m.fold(rule.Value)] = struct{}{}
	}

	m.rules = append(m.rules, rule)

	return nil
}

// Rules returns the rules the matcher was compiled from.
func (m *Matcher) Rules() []Rule {
	if m == nil {
		return nil
	}

	return append([]Rule(nil), m.rules...)
}

// CaseSensitive reports the matching policy.
func (m *Matcher) CaseSensitive() bool {
	return m != nil && m.caseSensitive
}

// Empty reports whether the matcher holds no rules.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.rules) == 0
}

// IsExcluded reports whether an entry with the given basename and full path is
// excluded by any rule. fullPath should be normalized; backslashes are converted.
func (m *Matcher) IsExcluded(name, fullPath string) bool {
	if m.Empty() {
		return false
	}

	name = m.fold(name)
	fullPath = m.fold(strings.ReplaceAll(fullPath, "\\", "/"))

	if _, ok := m.tokens[name]; ok {
		return true
	}

	for _, base := range m.paths {
		if withinPath(base, fullPath) {
			return true
		}
	}

	for _, re := range m.globs {
		if re.MatchString(name) || re.MatchString(fullPath) {
			return true
		}
	}

	return false
}

func (m *Matcher) fold(s string) string {
	if m.caseSensitive {
		return s
	}

	return cases.Fold().String(s)
}

// withinPath reports whether p equals base or lies below it, comparing whole segments.
func withinPath(base, p string) bool {
	if base == "" {
		// The filesystem root.
		return strings.HasPrefix(p, "/")
	}

	return p == base || strings.HasPrefix(p, base+"/")
}

// compileGlob translates shell glob syntax into an anchored regular expression.
// '*' matches any run of characters including separators, '?' a single character,
// and bracket expressions a character class ("[!...]" negates).
func compileGlob(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	var b strings.Builder

	b.WriteString("(?s)")

	if !caseSensitive {
		b.WriteString("(?i)")
	}

	b.WriteByte('^')

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		case '[':
			end := classEnd(runes, i)
			if end < 0 {
				b.WriteString(`\[`)

				continue
			}

			b.WriteString(translateClass(runes[i+1 : end]))
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}

	return re, nil
}

// classEnd returns the index of the ']' closing the bracket expression opened at
// start, or -1. A ']' directly after '[' or '[!' is literal.
func classEnd(runes []rune, start int) int {
	i := start + 1
	if i < len(runes) && (runes[i] == '!' || runes[i] == '^') {
		i++
	}

	if i < len(runes) && runes[i] == ']' {
		i++
	}

	for ; i < len(runes); i++ {
		if runes[i] == ']' {
			return i
		}
	}

	return -1
}

func translateClass(body []rune) string {
	var b strings.Builder

	b.WriteByte('[')

	if len(body) > 0 && (body[0] == '!' || body[0] == '^') {
		b.WriteByte('^')

		body = body[1:]
	}

	for _, r := range body {
		switch r {
		case '\\', '[', ']', '^':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte(']')

	return b.String()
}
