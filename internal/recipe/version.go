package recipe

import "gopkg.in/yaml.v3"

// VersionList is a recipe's `version:` field: a single version string, or a
// list of versions to expand into one logical recipe per entry (§4.4).
type VersionList []string

// UnmarshalYAML accepts either a bare scalar or a sequence of scalars.
func (v *VersionList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*v = list
	default:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*v = VersionList{s}
	}
	return nil
}

// Expand returns one Recipe per version in the list, each a shallow copy of
// base with Version pinned to a single entry. A recipe with zero or one
// version expands to itself unchanged (§4.4: version expansion only
// multiplies jobs when more than one version is declared).
func Expand(base Recipe) []Recipe {
	if len(base.Version) <= 1 {
		return []Recipe{base}
	}

	out := make([]Recipe, 0, len(base.Version))
	for _, ver := range base.Version {
		r := base
		r.Version = VersionList{ver}
		out = append(out, r)
	}
	return out
}
