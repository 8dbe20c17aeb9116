package apiregistry

import (
	"testing"

	"github.com/happy-sdk/happy/pkg/devel/testutils"
)

func TestRegistryExactMatch(t *testing.T) {
	r := New()
	r.RegisterExact("lighting/1000/toggle", func(suffix string) (any, error) {
		return "toggled:" + suffix, nil
	})

	res, err, ok := r.Lookup("lighting/1000/toggle/on")
	testutils.True(t, ok)
	testutils.NoError(t, err)
	testutils.Equal(t, "toggled:on", res.(string))
}

func TestRegistryPrefixFallback(t *testing.T) {
	r := New()
	r.RegisterMatcher("fallback", func(request string) (any, error) {
		return "matched:" + request, nil
	})

	res, err, ok := r.Lookup("unknown/path")
	testutils.True(t, ok)
	testutils.NoError(t, err)
	testutils.Equal(t, "matched:unknown/path", res.(string))
}

func TestRegistryUnregisteredLookupMisses(t *testing.T) {
	r := New()
	_, _, ok := r.Lookup("anything")
	testutils.False(t, ok)
}

func TestRegistryUnregisterExact(t *testing.T) {
	r := New()
	r.RegisterExact("a/b/c", func(string) (any, error) { return nil, nil })
	r.UnregisterExact("a/b/c")
	_, _, ok := r.Lookup("a/b/c")
	testutils.False(t, ok)
}
