// Package packageinfo supplies installed package versions to the
// normalizer. Build reports do not record versions; producers that know
// them attach a package-info extension to the report.
package packageinfo

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

// ExtensionName is the descriptor name of the package-info extension.
const ExtensionName = "@statoscope/stats-extension-package-info"

type instanceKey struct {
	compilation string
	pkg         string
	path        string
}

// Info holds the versions recorded by a package-info extension, per
// compilation, package and instance path.
type Info struct {
	versions map[instanceKey]string
}

// FromExtensions builds Info from the document's package-info extension.
// It returns nil when the document carries none or the payload is not
// valid.
func FromExtensions(doc *stats.Document) *Info {
	if doc == nil {
		return nil
	}
	ext, ok := doc.Extension(ExtensionName)
	if !ok {
		return nil
	}
	info, err := Parse(ext.Payload)
	if err != nil {
		return nil
	}
	return info
}

// Parse decodes a package-info payload:
//
//	{"compilations": [{"id": "<hash>", "packages": [
//	    {"name": "foo", "instances": [{"path": "node_modules/foo", "info": {"version": "1.0.0"}}]}
//	]}]}
func Parse(payload string) (*Info, error) {
	if !gjson.Valid(payload) {
		return nil, fmt.Errorf("package-info payload: malformed JSON")
	}

	info := &Info{versions: make(map[instanceKey]string)}

	gjson.Get(payload, "compilations").ForEach(func(_, c gjson.Result) bool {
		hash := c.Get("id").String()
		c.Get("packages").ForEach(func(_, p gjson.Result) bool {
			name := p.Get("name").String()
			p.Get("instances").ForEach(func(_, inst gjson.Result) bool {
				version := inst.Get("info.version")
				if version.Exists() && version.String() != "" {
					info.versions[instanceKey{hash, name, inst.Get("path").String()}] = version.String()
				}
				return true
			})
			return true
		})
		return true
	})

	return info, nil
}

// Len returns the number of instances with a known version.
func (i *Info) Len() int {
	if i == nil {
		return 0
	}
	return len(i.versions)
}

// InstanceVersion returns the recorded version of a package instance.
func (i *Info) InstanceVersion(compilationHash, packageName, instancePath string) (string, bool) {
	if i == nil {
		return "", false
	}
	v, ok := i.versions[instanceKey{compilationHash, packageName, instancePath}]
	return v, ok
}

// Static maps package name to instance path to version, for every
// compilation alike.
type Static map[string]map[string]string

// InstanceVersion returns the version configured for a package instance.
func (s Static) InstanceVersion(_, packageName, instancePath string) (string, bool) {
	v, ok := s[packageName][instancePath]
	return v, ok
}
