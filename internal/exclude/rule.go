package exclude

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyRule is returned for rules without a value.
	ErrEmptyRule = errors.New("empty exclusion rule")
	// ErrUnknownKind is returned when a rule kind cannot be parsed.
	ErrUnknownKind = errors.New("unknown rule kind")
	// ErrInvalidPattern is returned when a rule value is not valid for its kind.
	ErrInvalidPattern = errors.New("invalid rule pattern")
)

// Kind tags an exclusion rule with the way its value is matched.
type Kind int

const (
	// AbsolutePath excludes one path and everything below it.
	AbsolutePath Kind = iota
	// Glob excludes entries whose basename or full path matches a shell pattern.
	Glob
	// Token excludes entries whose basename equals the value.
	Token
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case AbsolutePath:
		return "path"
	case Glob:
		return "glob"
	case Token:
		return "token"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case AbsolutePath, Glob, Token:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
}

// UnmarshalText decodes a kind name. A few aliases are accepted.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "path", "abs", "absolute", "absolute_path", "absolutepath":
		*k = AbsolutePath
	case "glob", "pattern":
		*k = Glob
	case "token", "name":
		*k = Token
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(text))
	}

	return nil
}

// Rule is a single exclusion record as produced by the rule authoring surface.
type Rule struct {
	// Kind selects the matching strategy.
	Kind Kind `json:"kind" yaml:"kind"`
	// Value is the path, pattern or token.
	Value string `json:"value" yaml:"value"`
}

// String renders the rule as "kind value".
func (r Rule) String() string {
	return r.Kind.String() + " " + r.Value
}

// Validate reports whether the rule can be compiled.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Value) == "" {
		return ErrEmptyRule
	}

	switch r.Kind {
	case AbsolutePath:
		if !isAbs(r.Value) {
			return fmt.Errorf("%w: path rule %q is not absolute", ErrInvalidPattern, r.Value)
		}
	case Glob:
		if _, err := compileGlob(r.Value, true); err != nil {
			return err
		}
	case Token:
		if strings.Contains(r.Value, "/") {
			return fmt.Errorf("%w: token %q contains a path separator", ErrInvalidPattern, r.Value)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(r.Kind))
	}

	return nil
}

// ParseRule classifies free text the way the rule list accepts it: absolute paths
// become path rules, text with wildcard syntax becomes a glob, anything else a token.
func ParseRule(raw string) (Rule, error) {
	value := strings.Trim(strings.TrimSpace(raw), "'\"")
	if value == "" {
		return Rule{}, ErrEmptyRule
	}

	var rule Rule

	switch {
	case isAbs(value):
		rule = Rule{Kind: AbsolutePath, Value: NormalizePath(value)}
	case strings.ContainsAny(value, "*?["):
		rule = Rule{Kind: Glob, Value: value}
	default:
		rule = Rule{Kind: Token, Value: value}
	}

	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}

	return rule, nil
}

// ParseRules parses every raw value, stopping at the first invalid one.
func ParseRules(raw []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(raw))

	for _, r := range raw {
		rule, err := ParseRule(r)
		if err != nil {
			return nil, fmt.Errorf("parsing rule %q: %w", r, err)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// QuickRule derives a rule from an entry picked in the treemap. Directories are
// excluded by name, files by extension where they have one. With exact set the
// entry's own path is excluded instead.
func QuickRule(name, entryPath string, isDir, exact bool) Rule {
	if exact {
		return Rule{Kind: AbsolutePath, Value: NormalizePath(entryPath)}
	}

	if !isDir {
		if ext := path.Ext(name); ext != "" && ext != name {
			return Rule{Kind: Glob, Value: "*" + ext}
		}
	}

	return Rule{Kind: Token, Value: name}
}

// NormalizePath returns the absolute, cleaned, forward-slash form of p.
func NormalizePath(p string) string {
	abs, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		abs = filepath.Clean(p)
	}

	return filepath.ToSlash(abs)
}

func isAbs(p string) bool {
	return filepath.IsAbs(filepath.FromSlash(p)) || strings.HasPrefix(p, "/")
}
