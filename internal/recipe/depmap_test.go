package recipe

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func decodeDepMap(t *testing.T, src string) DepMap {
	t.Helper()
	var d DepMap
	if err := yaml.Unmarshal([]byte(src), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return d
}

func TestDepMapUnmarshalSplitsConjunctions(t *testing.T) {
	d := decodeDepMap(t, `
all: [curl]
centos+fedora: [rpm-build]
centos: [policycoreutils]
`)

	want := DepMap{
		"all":     {"curl"},
		"centos":  {"rpm-build", "policycoreutils"},
		"fedora":  {"rpm-build"},
	}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("got %#v, want %#v", d, want)
	}
}

func TestDepMapUnmarshalScalarValue(t *testing.T) {
	d := decodeDepMap(t, `all: curl`)
	want := DepMap{"all": {"curl"}}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("got %#v, want %#v", d, want)
	}
}

func TestDepMapResolveOrderAndDedup(t *testing.T) {
	d := DepMap{
		"all":         {"curl", "git"},
		"pkger-rpm":   {"rpm-build", "curl"},
		"centos":      {"policycoreutils", "git"},
	}

	got := d.Resolve("centos", "rpm")
	want := []string{"curl", "git", "rpm-build", "policycoreutils"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDepMapResolveUnknownImage(t *testing.T) {
	d := DepMap{"all": {"curl"}}
	got := d.Resolve("debian", "deb")
	want := []string{"curl"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDepMapMergeExtendsBuckets(t *testing.T) {
	parent := DepMap{"all": {"curl"}}
	child := DepMap{"all": {"git"}, "centos": {"rpm-build"}}

	got := parent.Merge(child)
	want := DepMap{"all": {"curl", "git"}, "centos": {"rpm-build"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	// parent must be untouched
	if len(parent["all"]) != 1 {
		t.Fatalf("Merge mutated parent: %#v", parent)
	}
}
