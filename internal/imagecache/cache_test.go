package imagecache

import "testing"

func TestImageTagForIsDeterministic(t *testing.T) {
	hash := Fingerprint([]string{"curl"}, false, nil)
	a := imageTagFor("centos8", "rpm", hash)
	b := imageTagFor("centos8", "rpm", hash)
	if a != b {
		t.Fatalf("imageTagFor should be deterministic: %s != %s", a, b)
	}
	if a[:len(tagPrefix)] != tagPrefix {
		t.Fatalf("expected tag to start with %q, got %q", tagPrefix, a)
	}
}

func TestImageTagForVariesByImageAndTarget(t *testing.T) {
	hash := Fingerprint([]string{"curl"}, false, nil)
	a := imageTagFor("centos8", "rpm", hash)
	b := imageTagFor("debian11", "rpm", hash)
	if a == b {
		t.Fatalf("expected different tags for different images")
	}
	c := imageTagFor("centos8", "deb", hash)
	if a == c {
		t.Fatalf("expected different tags for different targets")
	}
}

func TestMergeDefaultDepsDedupes(t *testing.T) {
	out := mergeDefaultDeps([]string{"git", "make"})
	seen := map[string]int{}
	for _, d := range out {
		seen[d]++
	}
	for dep, count := range seen {
		if count > 1 {
			t.Fatalf("dep %q appeared %d times in %v", dep, count, out)
		}
	}
	if seen["git"] == 0 || seen["make"] == 0 || seen["gzip"] == 0 || seen["curl"] == 0 || seen["tar"] == 0 {
		t.Fatalf("expected explicit deps plus defaults, got %v", out)
	}
}

func TestMergeDefaultDepsPreservesExplicitOrder(t *testing.T) {
	out := mergeDefaultDeps([]string{"make"})
	if out[0] != "make" {
		t.Fatalf("expected explicit deps first, got %v", out)
	}
}
