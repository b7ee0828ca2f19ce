// Package resource derives stable identities from the loosely formatted
// strings found in build reports: module identifiers carrying content
// hashes, loader-prefixed module names and node_modules paths.
//
// Every function is a pure function of its string input. Results are
// memoized in a Cache, which is bounded and safe for concurrent use.
package resource

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds each memo table of a Cache.
const DefaultCacheSize = 1 << 14

const (
	moduleTypeProvide = "provide-module"
	moduleTypeConsume = "consume-shared-module"
)

var (
	hashSuffixRx     = regexp.MustCompile(`^(.+[|\s])([a-f0-9]+)$`)
	extractFileRx    = regexp.MustCompile(`!?([^!]+)$`)
	concatenatedIDRx = regexp.MustCompile(`^(.+) \+ \d+ modules$`)
	lastNodeModuleRx = regexp.MustCompile(`^.*node_modules[/\\](?:(@.+?)[/\\])?([^/\\]+)`)
)

// NodeModule describes the package a path belongs to.
type NodeModule struct {
	// Name is the package name, including its scope (e.g. "@scope/name").
	Name string
	// Path is the path up to and including the package directory.
	Path string
	// IsRoot is false when the package is nested inside another package.
	IsRoot bool
}

// Cache memoizes id normalization, resource extraction and node_modules
// parsing. A nil *Cache is valid and computes every result afresh.
type Cache struct {
	ids         *lru.Cache[string, string]
	names       *lru.Cache[string, string]
	nodeModules *lru.Cache[string, *NodeModule]
}

// NewCache creates a Cache whose tables hold at most size entries each.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	ids, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating id cache: %w", err)
	}
	names, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating resource cache: %w", err)
	}
	nodeModules, err := lru.New[string, *NodeModule](size)
	if err != nil {
		return nil, fmt.Errorf("creating node module cache: %w", err)
	}

	return &Cache{ids: ids, names: names, nodeModules: nodeModules}, nil
}

// Purge drops every memoized entry.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.ids.Purge()
	c.names.Purge()
	c.nodeModules.Purge()
}

// Len returns the number of memoized entries across all tables.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.ids.Len() + c.names.Len() + c.nodeModules.Len()
}

// NormalizeID collapses a trailing content hash so that the same logical
// module built with different hashes shares one identity:
// "a.js|deadbeef" becomes "a.js|root".
func (c *Cache) NormalizeID(id string) string {
	if c != nil {
		if cached, ok := c.ids.Get(id); ok {
			return cached
		}
	}

	normalized := hashSuffixRx.ReplaceAllString(id, "${1}root")

	if c != nil {
		c.ids.Add(id, normalized)
	}
	return normalized
}

// ModuleNameResource extracts the file path from a module name, stripping
// loader prefixes, concatenation suffixes and a leading "./". Names that do
// not point at a file ("(ignored)" and "multi" entries) yield "".
func (c *Cache) ModuleNameResource(name string) string {
	if name == "" {
		return ""
	}

	if c != nil {
		if cached, ok := c.names.Get(name); ok {
			return cached
		}
	}

	resolved := moduleNameResource(name)

	if c != nil {
		c.names.Add(name, resolved)
	}
	return resolved
}

func moduleNameResource(name string) string {
	if strings.Contains(name, "(ignored)") || strings.HasPrefix(name, "multi") {
		return ""
	}

	normalized := matchGroup(extractFileRx, strings.Replace(name, "(webpack)", "node_modules/webpack", 1))
	if normalized == "" {
		return name
	}

	resource := normalized
	if inner := matchGroup(concatenatedIDRx, normalized); inner != "" {
		resource = inner
	}

	if strings.HasPrefix(resource, "./") || strings.HasPrefix(resource, `.\`) {
		return resource[2:]
	}
	return resource
}

// ModuleResource returns the resource path of a module. Module federation
// provide/consume modules carry their own descriptive name as resource.
func (c *Cache) ModuleResource(name, moduleType string) string {
	if moduleType == moduleTypeProvide || moduleType == moduleTypeConsume {
		return name
	}
	return c.ModuleNameResource(name)
}

// NodeModule parses the package a resource path belongs to, using the last
// node_modules segment of the path. It returns nil when the path is not
// inside node_modules.
func (c *Cache) NodeModule(path string) *NodeModule {
	if path == "" {
		return nil
	}

	if c != nil {
		if cached, ok := c.nodeModules.Get(path); ok {
			return cached
		}
	}

	parsed := parseNodeModule(path)

	if c != nil {
		c.nodeModules.Add(path, parsed)
	}
	return parsed
}

func parseNodeModule(path string) *NodeModule {
	match := lastNodeModuleRx.FindStringSubmatch(path)
	if match == nil || match[2] == "" {
		return nil
	}

	input, namespace, name := match[0], match[1], match[2]

	isFederated := strings.HasPrefix(path, "consume shared module") ||
		strings.HasPrefix(path, "provide shared module")

	nm := &NodeModule{
		Name:   name,
		Path:   input,
		IsRoot: strings.Index(input, "node_modules") == strings.LastIndex(input, "node_modules"),
	}
	if namespace != "" {
		nm.Name = namespace + "/" + name
	}
	if isFederated {
		nm.Path = path
	}

	return nm
}

func matchGroup(rx *regexp.Regexp, s string) string {
	m := rx.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
