package packageinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

const payload = `{
  "compilations": [
    {
      "id": "abc",
      "packages": [
        {
          "name": "foo",
          "instances": [
            { "path": "node_modules/foo", "info": { "version": "1.2.0" } },
            { "path": "node_modules/bar/node_modules/foo", "info": { "version": "0.9.1" } },
            { "path": "node_modules/baz/node_modules/foo", "info": {} }
          ]
        }
      ]
    },
    { "id": "def", "packages": [ { "name": "foo", "instances": [ { "path": "node_modules/foo", "info": { "version": "2.0.0" } } ] } ] }
  ]
}`

func TestParse(t *testing.T) {
	info, err := Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Len())

	tests := []struct {
		name        string
		compilation string
		pkg         string
		path        string
		want        string
		found       bool
	}{
		{"root instance", "abc", "foo", "node_modules/foo", "1.2.0", true},
		{"nested instance", "abc", "foo", "node_modules/bar/node_modules/foo", "0.9.1", true},
		{"instance without version", "abc", "foo", "node_modules/baz/node_modules/foo", "", false},
		{"other compilation", "def", "foo", "node_modules/foo", "2.0.0", true},
		{"unknown compilation", "zzz", "foo", "node_modules/foo", "", false},
		{"unknown package", "abc", "bar", "node_modules/bar", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := info.InstanceVersion(tt.compilation, tt.pkg, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(`{"compilations": [`)
	assert.Error(t, err)
}

func TestFromExtensions(t *testing.T) {
	doc := &stats.Document{
		Extensions: []stats.Extension{
			{Name: "something-else", Payload: `{}`},
			{Name: ExtensionName, Version: "5.0.0", Payload: payload},
		},
	}

	info := FromExtensions(doc)
	require.NotNil(t, info)
	v, ok := info.InstanceVersion("abc", "foo", "node_modules/foo")
	assert.True(t, ok)
	assert.Equal(t, "1.2.0", v)
}

func TestFromExtensions_Missing(t *testing.T) {
	assert.Nil(t, FromExtensions(nil))
	assert.Nil(t, FromExtensions(&stats.Document{}))
	assert.Nil(t, FromExtensions(&stats.Document{
		Extensions: []stats.Extension{{Name: ExtensionName, Payload: `not json`}},
	}))
}

func TestInfo_NilReceiver(t *testing.T) {
	var info *Info
	_, ok := info.InstanceVersion("abc", "foo", "node_modules/foo")
	assert.False(t, ok)
	assert.Zero(t, info.Len())
}

func TestStatic(t *testing.T) {
	s := Static{"foo": {"node_modules/foo": "1.0.0"}}

	v, ok := s.InstanceVersion("any", "foo", "node_modules/foo")
	assert.True(t, ok)
	assert.Equal(t, "1.0.0", v)

	_, ok = s.InstanceVersion("any", "bar", "node_modules/bar")
	assert.False(t, ok)
}
