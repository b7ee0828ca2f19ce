// Package resolve finds validator plugin and reporter packages installed
// under node_modules, accepting either their full or their short alias.
//
// A short alias is expanded with the prefixes of its kind:
//
//	resolve.AliasPackage(resolve.KindPlugin, "webpack", "/app")
//	// tries webpack, statoscope-stats-validator-plugin-webpack
//
//	resolve.AliasPackage(resolve.KindPlugin, "@statoscope/webpack", "/app")
//	// tries @statoscope/webpack, @statoscope/stats-validator-plugin-webpack,
//	// @statoscope/statoscope-stats-validator-plugin-webpack
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind selects the alias prefixes used to expand a short package name.
type Kind string

const (
	KindPlugin   Kind = "plugin"
	KindReporter Kind = "reporter"
)

// RootDirToken is replaced with the resolution directory in aliases.
const RootDirToken = "<rootDir>"

// packageName is a package namespace ("" when unscoped) and its bare name.
type packageName struct {
	namespace string
	name      string
}

func (p packageName) String() string {
	if p.namespace != "" {
		return p.namespace + "/" + p.name
	}
	return p.name
}

var aliasPrefixes = map[Kind][]packageName{
	KindPlugin: {
		{namespace: "@statoscope", name: "stats-validator-plugin"},
		{name: "statoscope-stats-validator-plugin"},
	},
	KindReporter: {
		{namespace: "@statoscope", name: "stats-validator-reporter"},
		{name: "statoscope-stats-validator-reporter"},
	},
}

var scopedNameRx = regexp.MustCompile(`^(@.+?)/(.+)`)

// ParseKind converts a command-line word into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindPlugin, KindReporter:
		return k, nil
	default:
		return "", fmt.Errorf("unknown package kind %q (want %q or %q)", s, KindPlugin, KindReporter)
	}
}

// ResolutionError reports an alias that matched no installed package.
type ResolutionError struct {
	// Alias is the name as provided.
	Alias string
	// Alternatives are the expanded names that were also tried.
	Alternatives []string
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("can't resolve package %s", e.Alias)
	if len(e.Alternatives) > 0 {
		msg += fmt.Sprintf(" (also tried %s, none of which worked)", strings.Join(e.Alternatives, ", "))
	}
	return msg
}

// Hint suggests how to install the missing package.
func (e *ResolutionError) Hint() string {
	var b strings.Builder
	b.WriteString("Try installing the package locally:\n")
	fmt.Fprintf(&b, "- with npm: npm i -D %s (or corresponding package alias)\n", e.Alias)
	fmt.Fprintf(&b, "- with yarn: yarn add -D %s (or corresponding package alias)\n", e.Alias)
	return b.String()
}

// Aliases returns every name an alias expands to, the alias itself first.
func Aliases(kind Kind, alias string) []string {
	names := expand(kind, alias)
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	return out
}

func expand(kind Kind, alias string) []packageName {
	original := packageName{name: alias}
	if m := scopedNameRx.FindStringSubmatch(alias); m != nil {
		original = packageName{namespace: m[1], name: m[2]}
	}

	names := []packageName{original}
	for _, prefix := range aliasPrefixes[kind] {
		if prefix.namespace != "" && prefix.namespace != original.namespace {
			continue
		}
		if strings.HasPrefix(original.name, prefix.name) {
			continue
		}
		names = append(names, packageName{
			namespace: original.namespace,
			name:      prefix.name + "-" + original.name,
		})
	}
	return names
}

// AliasPackage resolves a full or short package alias from fromDir and
// returns the name that resolved. Relative and absolute paths (after
// <rootDir> substitution) are returned as-is once they are found to exist.
func AliasPackage(kind Kind, alias, fromDir string) (string, error) {
	alias = strings.Replace(alias, RootDirToken, fromDir, 1)

	if strings.HasPrefix(alias, ".") || filepath.IsAbs(alias) {
		target := alias
		if !filepath.IsAbs(target) {
			target = filepath.Join(fromDir, target)
		}
		if _, ok := resolveFile(target); !ok {
			return "", &ResolutionError{Alias: alias}
		}
		return alias, nil
	}

	names := expand(kind, alias)
	for _, n := range names {
		if _, ok := Locate(filepath.Join(n.namespace, n.name), fromDir); ok {
			return n.String(), nil
		}
	}

	alternatives := make([]string, 0, len(names)-1)
	for _, n := range names[1:] {
		alternatives = append(alternatives, n.String())
	}
	return "", &ResolutionError{Alias: names[0].String(), Alternatives: alternatives}
}

// Locate looks for a package in the node_modules directories of fromDir and
// each of its ancestors, nearest first, and returns its path.
func Locate(name, fromDir string) (string, bool) {
	dir, err := filepath.Abs(fromDir)
	if err != nil {
		return "", false
	}

	for {
		if filepath.Base(dir) != "node_modules" {
			if found, ok := resolveFile(filepath.Join(dir, "node_modules", name)); ok {
				return found, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// resolveFile checks target as a file, with the usual extensions, or as a
// package directory.
func resolveFile(target string) (string, bool) {
	for _, candidate := range []string{target, target + ".js", target + ".json"} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return "", false
	}
	for _, entry := range []string{"package.json", "index.js"} {
		if _, err := os.Stat(filepath.Join(target, entry)); err == nil {
			return target, true
		}
	}
	return "", false
}
