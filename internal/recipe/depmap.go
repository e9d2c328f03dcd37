package recipe

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommonDepsKey is the bucket every image sees regardless of name (§4.1).
const CommonDepsKey = "all"

// DepMap is a dependency/conflicts/provides table: bucket name -> package
// list. Buckets are keyed by "all", a concrete image name, the generic
// "pkger-<target>" form, or a "+"-joined conjunction of image names
// ("centos+fedora: [...]"). Conjunctions are split at decode time: each
// name in the join gets its own bucket extended with the listed packages,
// matching the original implementation's update_or_insert behavior.
type DepMap map[string][]string

// UnmarshalYAML decodes a mapping of bucket name to a package list (either
// a YAML sequence or a single scalar, treated as a one-element list), and
// eagerly splits any "+"-joined key into its constituent image buckets.
func (d *DepMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return &yaml.TypeError{Errors: []string{"dependency map must be a mapping"}}
	}

	out := DepMap{}
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}

		var pkgs []string
		switch valNode.Kind {
		case yaml.SequenceNode:
			if err := valNode.Decode(&pkgs); err != nil {
				return err
			}
		default:
			var single string
			if err := valNode.Decode(&single); err != nil {
				return err
			}
			pkgs = []string{single}
		}

		for _, name := range strings.Split(key, "+") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			out[name] = append(out[name], pkgs...)
		}
	}

	*d = out
	return nil
}

// Resolve returns the package list that applies to a build of image for
// target: the "all" bucket, then the generic "pkger-<target>" bucket, then
// the image's own named bucket, concatenated in that order with duplicates
// removed preserving first occurrence (§8).
//
// The original Rust implementation unions these with a HashSet, which
// loses ordering; pkger keeps first-seen order since step/dependency order
// is otherwise observable (e.g. in generated spec/control files).
func (d DepMap) Resolve(image, target string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(pkgs []string) {
		for _, p := range pkgs {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}

	add(d[CommonDepsKey])
	add(d["pkger-"+target])
	add(d[image])

	return out
}

// Merge overlays other on top of d, extending each bucket (used when
// merging a child recipe's dependency map with its parent's, per §4.2's
// "map" merge category).
func (d DepMap) Merge(other DepMap) DepMap {
	out := DepMap{}
	for k, v := range d {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range other {
		out[k] = append(out[k], v...)
	}
	return out
}

// sortedKeys returns d's bucket names in sorted order, for SortedEntries'
// deterministic iteration.
func (d DepMap) sortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedEntries returns (bucket, packages) pairs ordered by bucket name,
// for deterministic serialization and fingerprinting.
func (d DepMap) SortedEntries() []struct {
	Bucket string
	Pkgs   []string
} {
	keys := d.sortedKeys()
	out := make([]struct {
		Bucket string
		Pkgs   []string
	}, 0, len(keys))
	for _, k := range keys {
		out = append(out, struct {
			Bucket string
			Pkgs   []string
		}{Bucket: k, Pkgs: d[k]})
	}
	return out
}
