package recipe

import "testing"

func TestStepAppliesUnconstrained(t *testing.T) {
	s := Step{Cmd: "make"}
	if !s.Applies("centos", "1.0", "rpm") {
		t.Fatalf("unconstrained step should apply to everything")
	}
}

func TestStepAppliesImageFilter(t *testing.T) {
	s := Step{Cmd: "make", Images: []string{"centos", "fedora"}}
	if !s.Applies("centos", "1.0", "rpm") {
		t.Fatalf("should apply to centos")
	}
	if s.Applies("debian", "1.0", "deb") {
		t.Fatalf("should not apply to debian")
	}
}

func TestStepAppliesVersionFilter(t *testing.T) {
	s := Step{Cmd: "make", Versions: []string{"2.0"}}
	if s.Applies("centos", "1.0", "rpm") {
		t.Fatalf("should not apply to version 1.0")
	}
	if !s.Applies("centos", "2.0", "rpm") {
		t.Fatalf("should apply to version 2.0")
	}
}

func TestStepAppliesNegativeTargetGate(t *testing.T) {
	no := false
	s := Step{Cmd: "make", Deb: &no}
	if s.Applies("debian", "1.0", "deb") {
		t.Fatalf("deb: false should exclude deb target")
	}
	if !s.Applies("centos", "1.0", "rpm") {
		t.Fatalf("deb: false should not affect rpm target")
	}
}

func TestStepAppliesPositiveTargetGateExcludesUnmentioned(t *testing.T) {
	yes := true
	s := Step{Cmd: "make", RPM: &yes}
	if !s.Applies("centos", "1.0", "rpm") {
		t.Fatalf("rpm: true should apply to rpm")
	}
	if s.Applies("debian", "1.0", "deb") {
		t.Fatalf("rpm: true should exclude deb, which it doesn't mention")
	}
}
