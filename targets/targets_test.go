package targets

import (
	"bytes"
	"testing"

	"github.com/panux/anvil/buildfile"
	"github.com/panux/anvil/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBindsAllAliases(t *testing.T) {
	r := registry.New()
	Register(r)

	for _, alias := range []string{
		"java_library", "scala_library", "python_library", "python_binary",
		"python_test", "python_thrift_library", "java_thrift_library",
		"java_antlr_library", "jar_library", "resources", "page", "jvm_binary",
	} {
		_, ok := r.TargetConstructor(alias)
		assert.True(t, ok, "expected %s to be registered", alias)
	}
}

func TestJavaLibraryRejectsUnknownKwarg(t *testing.T) {
	_, _, err := constructJavaLibrary(registry.ConstructContext{
		Address: buildfile.NewBuildFileAddress("proj/a", "a"),
		Kwargs:  map[string]interface{}{"bogus": "x"},
	})
	require.Error(t, err)
}

func TestPythonThriftLibraryValidatesVersion(t *testing.T) {
	_, _, err := constructPythonThriftLibrary(registry.ConstructContext{
		Address: buildfile.NewBuildFileAddress("proj/a", "a"),
		Kwargs:  map[string]interface{}{"thrift_version": "99.9"},
	})
	require.Error(t, err)

	payload, labels, err := constructPythonThriftLibrary(registry.ConstructContext{
		Address: buildfile.NewBuildFileAddress("proj/a", "a"),
		Kwargs:  map[string]interface{}{"thrift_version": "0.10"},
	})
	require.NoError(t, err)
	assert.Contains(t, labels, "thrift")
	pl, ok := payload.(PythonThriftLibrary)
	require.True(t, ok)
	assert.Equal(t, "0.10", pl.ThriftVersion)
}

func TestPayloadHashIsOrderIndependent(t *testing.T) {
	a := JavaLibrary{Sources: []string{"b.java", "a.java"}}
	b := JavaLibrary{Sources: []string{"a.java", "b.java"}}

	var ha, hb bytes.Buffer
	require.NoError(t, a.AbsorbHash(&ha))
	require.NoError(t, b.AbsorbHash(&hb))
	assert.Equal(t, ha.String(), hb.String())
}

func TestResourcesExposesTraversableSpecs(t *testing.T) {
	payload, _, err := constructResources(registry.ConstructContext{
		Address: buildfile.NewBuildFileAddress("proj/a", "a"),
		Kwargs:  map[string]interface{}{"bundled": []interface{}{"proj/b:res"}},
	})
	require.NoError(t, err)
	res, ok := payload.(Resources)
	require.True(t, ok)
	assert.Equal(t, []string{"proj/b:res"}, res.TraversableSpecs())
}

func TestJarLibraryRequiresAtLeastOneJar(t *testing.T) {
	_, _, err := constructJarLibrary(registry.ConstructContext{
		Address: buildfile.NewBuildFileAddress("proj/a", "a"),
		Kwargs:  map[string]interface{}{},
	})
	require.Error(t, err)
}
