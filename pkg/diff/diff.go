// Package diff compares the packages of two normalized compilations.
package diff

import (
	"fmt"
	"sort"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/simonhull/firebird-suite/magpie/pkg/model"
)

// PackageChange is one package that differs between two compilations.
type PackageChange struct {
	// Package is taken from the newer compilation, or from the older one
	// for removed packages.
	Package *model.Package `json:"package" yaml:"package"`
	// Hash identifies the compilation Package belongs to.
	Hash    string            `json:"hash" yaml:"hash"`
	Added   []*model.Instance `json:"added" yaml:"added"`
	Removed []*model.Instance `json:"removed" yaml:"removed"`
}

// PackagesDiff lists packages added, removed and changed from a to b.
type PackagesDiff struct {
	Added   []PackageChange `json:"added" yaml:"added"`
	Removed []PackageChange `json:"removed" yaml:"removed"`
	Changed []PackageChange `json:"changed" yaml:"changed"`
}

// Empty reports whether both compilations have the same packages and
// instances.
func (d *PackagesDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Packages diffs the packages of a (before) and b (after). Added and
// removed packages are ordered by instance count, then name; changed
// packages by added then removed instance count, then name. Instances are
// ordered root first, then by path.
func Packages(a, b *model.Compilation) *PackagesDiff {
	d := &PackagesDiff{
		Added:   make([]PackageChange, 0),
		Removed: make([]PackageChange, 0),
		Changed: make([]PackageChange, 0),
	}

	for _, pkg := range b.Packages {
		if a.ResolvePackage(pkg.Name) == nil {
			d.Added = append(d.Added, PackageChange{
				Package: pkg,
				Hash:    b.Hash,
				Added:   sortInstances(pkg.Instances),
				Removed: make([]*model.Instance, 0),
			})
		}
	}

	for _, pkg := range a.Packages {
		other := b.ResolvePackage(pkg.Name)
		if other == nil {
			d.Removed = append(d.Removed, PackageChange{
				Package: pkg,
				Hash:    a.Hash,
				Added:   make([]*model.Instance, 0),
				Removed: sortInstances(pkg.Instances),
			})
			continue
		}

		added := missingFrom(other.Instances, pkg)
		removed := missingFrom(pkg.Instances, other)
		if len(added) == 0 && len(removed) == 0 {
			continue
		}
		d.Changed = append(d.Changed, PackageChange{
			Package: other,
			Hash:    b.Hash,
			Added:   sortInstances(added),
			Removed: sortInstances(removed),
		})
	}

	byInstances := func(list []PackageChange) func(i, j int) bool {
		return func(i, j int) bool {
			ni, nj := len(list[i].Package.Instances), len(list[j].Package.Instances)
			if ni != nj {
				return ni > nj
			}
			return list[i].Package.Name < list[j].Package.Name
		}
	}
	sort.SliceStable(d.Added, byInstances(d.Added))
	sort.SliceStable(d.Removed, byInstances(d.Removed))
	sort.SliceStable(d.Changed, func(i, j int) bool {
		ci, cj := d.Changed[i], d.Changed[j]
		if len(ci.Added) != len(cj.Added) {
			return len(ci.Added) > len(cj.Added)
		}
		if len(ci.Removed) != len(cj.Removed) {
			return len(ci.Removed) > len(cj.Removed)
		}
		return ci.Package.Name < cj.Package.Name
	})

	return d
}

// missingFrom returns the instances whose path pkg does not have.
func missingFrom(instances []*model.Instance, pkg *model.Package) []*model.Instance {
	out := make([]*model.Instance, 0)
	for _, inst := range instances {
		if pkg.Instance(inst.Path) == nil {
			out = append(out, inst)
		}
	}
	return out
}

func sortInstances(instances []*model.Instance) []*model.Instance {
	out := append(make([]*model.Instance, 0, len(instances)), instances...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsRoot != out[j].IsRoot {
			return out[i].IsRoot
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Unified renders the package instances of a and b as listings and returns
// their unified diff, or "" when the listings are equal.
func Unified(a, b *model.Compilation) (string, error) {
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(Listing(a)),
		B:        difflib.SplitLines(Listing(b)),
		FromFile: label(a),
		ToFile:   label(b),
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to diff packages: %w", err)
	}
	return s, nil
}

// Listing writes one line per package instance, sorted by package name and
// instance path: "name@version path", the version omitted when unknown.
func Listing(c *model.Compilation) string {
	pkgs := append(make([]*model.Package, 0, len(c.Packages)), c.Packages...)
	sort.SliceStable(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })

	var b strings.Builder
	for _, pkg := range pkgs {
		instances := append(make([]*model.Instance, 0, len(pkg.Instances)), pkg.Instances...)
		sort.SliceStable(instances, func(i, j int) bool { return instances[i].Path < instances[j].Path })

		for _, inst := range instances {
			b.WriteString(pkg.Name)
			if inst.Version != "" {
				b.WriteString("@" + inst.Version)
			}
			b.WriteString(" " + inst.Path + "\n")
		}
	}
	return b.String()
}

func label(c *model.Compilation) string {
	if c.Name != "" {
		return c.Name + " (" + c.Hash + ")"
	}
	return c.Hash
}
