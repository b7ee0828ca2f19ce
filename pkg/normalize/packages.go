package normalize

import (
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
)

// Provenance supplies package metadata that build reports do not carry
// themselves, such as installed versions.
type Provenance interface {
	// InstanceVersion returns the version of the package instance installed
	// at instancePath in the given compilation.
	InstanceVersion(compilationHash, packageName, instancePath string) (string, bool)
}

// extractPackages groups modules living under node_modules into packages
// and instances, and records which outside modules import each instance.
func (cx *compilationContext) extractPackages() {
	instanceModules := make(map[*model.Instance]map[string]bool)
	instanceReasons := make(map[*model.Instance]map[string]bool)

	for _, m := range cx.modules.All() {
		if m.ResolvedResource == "" {
			continue
		}
		nm := cx.cache.NodeModule(m.ResolvedResource)
		if nm == nil {
			continue
		}

		pkg, ok := cx.packages.Get(nm.Name)
		if !ok {
			pkg = &model.Package{Name: nm.Name, Instances: make([]*model.Instance, 0, 1)}
			cx.packages.Add(pkg)
		}

		inst := pkg.Instance(nm.Path)
		if inst == nil {
			inst = &model.Instance{
				Path:    nm.Path,
				IsRoot:  nm.IsRoot,
				Modules: make([]string, 0),
				Reasons: make([]string, 0),
			}
			if cx.provenance != nil {
				if version, ok := cx.provenance.InstanceVersion(cx.hash, pkg.Name, nm.Path); ok {
					inst.Version = version
				}
			}
			pkg.Instances = append(pkg.Instances, inst)
			instanceModules[inst] = make(map[string]bool)
			instanceReasons[inst] = make(map[string]bool)
		}

		if !instanceModules[inst][m.Identifier] {
			instanceModules[inst][m.Identifier] = true
			inst.Modules = append(inst.Modules, m.Identifier)
		}

		for _, r := range m.Reasons {
			if r.ResolvedModule == "" || instanceReasons[inst][r.ResolvedModule] {
				continue
			}
			if source := cx.reasonPackagePath(r); source != "" && source == inst.Path {
				continue
			}
			instanceReasons[inst][r.ResolvedModule] = true
			inst.Reasons = append(inst.Reasons, r.ResolvedModule)
		}
	}
}

// reasonPackagePath returns the instance path of the module a reason comes
// from, or "" when it does not live in node_modules.
func (cx *compilationContext) reasonPackagePath(r model.Reason) string {
	resource := ""
	if source, ok := cx.modules.Get(r.ResolvedModule); ok {
		resource = source.ResolvedResource
	}
	if resource == "" {
		resource = cx.cache.ModuleNameResource(r.ModuleName)
	}

	if nm := cx.cache.NodeModule(resource); nm != nil {
		return nm.Path
	}
	return ""
}
