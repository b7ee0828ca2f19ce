package normalize

import (
	"strings"

	"github.com/simonhull/firebird-suite/magpie/pkg/model"
	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

// legacyEntrySuffix is appended to single-entry names by old producers
// ("main[0]").
const legacyEntrySuffix = "[0]"

// prepareModules resolves every module occurrence into the final index.
// The same record seen twice is skipped; a distinct record whose
// identifier normalizes to an existing module is merged into it.
func (cx *compilationContext) prepareModules() {
	seen := make(map[*stats.Module]bool, len(cx.occurrences))

	for _, raw := range cx.occurrences {
		if seen[raw] {
			continue
		}
		seen[raw] = true

		resolved := cx.resolveModule(raw)
		if existing, added := cx.modules.Add(resolved); !added {
			mergeModules(existing, resolved)
		}
	}

	cx.attachDeps()
	cx.inheritChunks()
	cx.indexChunkMembers()
}

// resolveModule builds a normalized module from one raw occurrence.
func (cx *compilationContext) resolveModule(raw *stats.Module) *model.Module {
	self, _ := cx.canonicalModule(raw.Identifier)

	m := &model.Module{
		Identifier:       self,
		Name:             raw.Name,
		ModuleType:       raw.ModuleType,
		Size:             raw.Size,
		ResolvedResource: cx.cache.ModuleResource(raw.Name, raw.ModuleType),
		Chunks:           cx.chunkRefs(raw.Chunks),
		Reasons:          make([]model.Reason, 0, len(raw.Reasons)),
		Deps:             make([]model.Dep, 0),
		Modules:          make([]string, 0, len(raw.Modules)),
		IssuerPath:       make([]model.Issuer, 0, len(raw.IssuerPath)),
	}

	selfKey := cx.cache.NormalizeID(raw.Identifier)

	for _, r := range uniqueReasons(raw.Reasons) {
		if r.ModuleIdentifier != "" && cx.cache.NormalizeID(r.ModuleIdentifier) == selfKey {
			continue
		}

		reason := cx.resolveReason(r)
		m.Reasons = append(m.Reasons, reason)

		if reason.ResolvedModule != "" {
			cx.pendingDeps = append(cx.pendingDeps, pendingDep{
				source: reason.ResolvedModule,
				dep:    model.Dep{Module: self, Reason: reason},
			})
		}

		if reason.ResolvedEntry != "" {
			entry, _ := cx.entrypoints.Get(reason.ResolvedEntry)
			if entry != nil && entry.Dep == nil {
				target := reason.ResolvedModule
				if target == "" {
					target = self
				}
				entry.Dep = &model.Dep{Module: target, Reason: reason}
			}
		}
	}

	nested := make(map[string]bool, len(raw.Modules))
	for _, inner := range raw.Modules {
		if inner == nil {
			continue
		}
		id, ok := cx.canonicalModule(inner.Identifier)
		if ok && !nested[id] {
			nested[id] = true
			m.Modules = append(m.Modules, id)
		}
	}

	for _, issuer := range raw.IssuerPath {
		resolved, _ := cx.canonicalModule(issuer.Identifier)
		m.IssuerPath = append(m.IssuerPath, model.Issuer{
			Identifier:     issuer.Identifier,
			Name:           issuer.Name,
			ResolvedModule: resolved,
		})
	}

	return m
}

// resolveReason links a raw reason to the module that carries it and, for
// entry-typed reasons, to the entrypoint named by its location.
func (cx *compilationContext) resolveReason(r stats.Reason) model.Reason {
	reason := model.Reason{
		ModuleIdentifier: r.ModuleIdentifier,
		ModuleName:       r.ModuleName,
		Type:             r.Type,
		Loc:              r.Loc,
		UserRequest:      r.UserRequest,
	}

	if r.ModuleIdentifier != "" {
		reason.ResolvedModule, _ = cx.canonicalModule(r.ModuleIdentifier)
	}

	if strings.HasSuffix(r.Type, "entry") && r.Loc != "" {
		if name, ok := cx.lookupEntry(r.Loc); ok {
			reason.ResolvedEntry = name
			reason.ResolvedEntryName = name
		}
	}

	return reason
}

// lookupEntry finds the entrypoint a reason location names, falling back
// to the legacy single-entry form "name[0]".
func (cx *compilationContext) lookupEntry(loc string) (string, bool) {
	if cx.entrypoints.HasKey(loc) {
		return loc, true
	}
	if strings.HasSuffix(loc, legacyEntrySuffix) {
		name := strings.TrimSuffix(loc, legacyEntrySuffix)
		if cx.entrypoints.HasKey(name) {
			return name, true
		}
	}
	return "", false
}

// attachDeps turns resolved reasons into outgoing edges on the modules that
// carry them.
func (cx *compilationContext) attachDeps() {
	seen := make(map[string]bool, len(cx.pendingDeps))

	for _, p := range cx.pendingDeps {
		source, ok := cx.modules.Get(p.source)
		if !ok {
			continue
		}
		key := source.Identifier + "\x00" + p.dep.Module + "\x00" + p.dep.Reason.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		source.Deps = append(source.Deps, p.dep)
	}
	cx.pendingDeps = cx.pendingDeps[:0]
}

// inheritChunks gives nested modules without chunks the chunks of the
// module that concatenates them, repeating until nested chains settle.
func (cx *compilationContext) inheritChunks() {
	for changed := true; changed; {
		changed = false
		for _, parent := range cx.modules.All() {
			if len(parent.Chunks) == 0 {
				continue
			}
			for _, id := range parent.Modules {
				inner, ok := cx.modules.Get(id)
				if !ok || len(inner.Chunks) > 0 {
					continue
				}
				inner.Chunks = append([]string(nil), parent.Chunks...)
				changed = true
			}
		}
	}
}

// indexChunkMembers records, per chunk id, the modules that belong to it.
func (cx *compilationContext) indexChunkMembers() {
	for _, m := range cx.modules.All() {
		for _, id := range m.Chunks {
			cx.chunkMembers[id] = append(cx.chunkMembers[id], m.Identifier)
		}
	}
}

// mergeModules folds another occurrence of the same module into to. Chunks
// and nested modules are unioned; reasons are unioned by
// (moduleIdentifier, type, loc).
func mergeModules(to, from *model.Module) {
	to.Chunks = unionStrings(to.Chunks, from.Chunks)
	to.Modules = unionStrings(to.Modules, from.Modules)

	seen := make(map[string]bool, len(to.Reasons))
	for _, r := range to.Reasons {
		seen[r.Key()] = true
	}
	for _, r := range from.Reasons {
		if !seen[r.Key()] {
			seen[r.Key()] = true
			to.Reasons = append(to.Reasons, r)
		}
	}

	if to.Name == "" {
		to.Name = from.Name
		to.ResolvedResource = from.ResolvedResource
	}
	if to.ModuleType == "" {
		to.ModuleType = from.ModuleType
	}
	if len(to.IssuerPath) == 0 {
		to.IssuerPath = from.IssuerPath
	}
}

// uniqueReasons drops raw reasons that repeat an earlier
// (moduleIdentifier, type, loc) triple.
func uniqueReasons(reasons []stats.Reason) []stats.Reason {
	seen := make(map[string]bool, len(reasons))
	out := make([]stats.Reason, 0, len(reasons))
	for _, r := range reasons {
		if !seen[r.Key()] {
			seen[r.Key()] = true
			out = append(out, r)
		}
	}
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
