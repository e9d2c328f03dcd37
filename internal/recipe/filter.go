package recipe

// Applies reports whether step runs for a given image/version/target
// combination (§4.5). Images and Versions are inclusion lists: empty means
// unconstrained. The per-target booleans are independent negative/positive
// gates: nil means unconstrained, non-nil must match target's boolean
// membership exactly. All constraints are ANDed.
func (s Step) Applies(image, version, target string) bool {
	if len(s.Images) > 0 && !containsString(s.Images, image) {
		return false
	}
	if len(s.Versions) > 0 && !containsString(s.Versions, version) {
		return false
	}

	targets := map[string]*bool{
		"rpm":  s.RPM,
		"deb":  s.Deb,
		"pkg":  s.Pkg,
		"apk":  s.Apk,
		"gzip": s.Gzip,
	}
	if gate, ok := targets[target]; ok && gate != nil && !*gate {
		return false
	}
	// A step naming only other targets' positive gates (e.g. rpm: true)
	// implicitly excludes every target it doesn't mention positively.
	anyPositive := false
	for _, gate := range targets {
		if gate != nil && *gate {
			anyPositive = true
			break
		}
	}
	if anyPositive {
		gate, ok := targets[target]
		if !ok || gate == nil || !*gate {
			return false
		}
	}

	return true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
