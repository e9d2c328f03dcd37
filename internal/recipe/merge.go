package recipe

// merge overlays child's explicitly-set fields onto a copy of parent,
// implementing the per-category deep merge from §4.2:
//
//   - scalar fields (name, version, license, ...): child wins if non-zero,
//     else parent's value is kept.
//   - list fields (patches, exclude): child's list is appended to parent's.
//   - map fields (depends, env, ...): child's entries extend parent's
//     (DepMap.Merge), child overriding on key collision for plain maps.
//   - phases (configure/build/install): shell/working_dir are inherited
//     from the parent unless the child sets them; the step list is kept
//     whole (never merged element-by-element) but only replaced when the
//     child defines a step list of its own.
//
// merge never mutates parent or child.
func merge(parent, child Recipe) Recipe {
	out := parent

	out.Name = overrideString(parent.Name, child.Name)
	out.Release = overrideString(parent.Release, child.Release)
	out.Epoch = overrideString(parent.Epoch, child.Epoch)
	out.Description = overrideString(parent.Description, child.Description)
	out.License = overrideString(parent.License, child.License)
	out.Maintainer = overrideString(parent.Maintainer, child.Maintainer)
	out.URL = overrideString(parent.URL, child.URL)
	out.Arch = overrideString(parent.Arch, child.Arch)
	out.Group = overrideString(parent.Group, child.Group)
	out.Source = overrideString(parent.Source, child.Source)
	out.Dir = child.Dir

	if len(child.Version) > 0 {
		out.Version = child.Version
	}
	if child.Git != nil {
		out.Git = child.Git
	}
	if len(child.Images) > 0 {
		out.Images = child.Images
	}
	if child.AllImages {
		out.AllImages = true
	}
	if child.SkipDefaultDeps {
		out.SkipDefaultDeps = true
	}

	out.Patches = append(append([]Patch(nil), parent.Patches...), child.Patches...)
	out.Exclude = append(append([]string(nil), parent.Exclude...), child.Exclude...)

	out.Depends = parent.Depends.Merge(child.Depends)
	out.BuildDepends = parent.BuildDepends.Merge(child.BuildDepends)
	out.Conflicts = parent.Conflicts.Merge(child.Conflicts)
	out.Provides = parent.Provides.Merge(child.Provides)

	out.Deb.PreDepends = parent.Deb.PreDepends.Merge(child.Deb.PreDepends)
	out.RPM.Obsoletes = parent.RPM.Obsoletes.Merge(child.RPM.Obsoletes)
	out.RPM.Pre = overrideString(parent.RPM.Pre, child.RPM.Pre)
	out.RPM.Post = overrideString(parent.RPM.Post, child.RPM.Post)
	out.RPM.Preun = overrideString(parent.RPM.Preun, child.RPM.Preun)
	out.RPM.Postun = overrideString(parent.RPM.Postun, child.RPM.Postun)
	out.Pkg.OptDepends = parent.Pkg.OptDepends.Merge(child.Pkg.OptDepends)
	out.Pkg.Install = overrideString(parent.Pkg.Install, child.Pkg.Install)
	out.Apk.CheckDepends = parent.Apk.CheckDepends.Merge(child.Apk.CheckDepends)

	out.Env = mergeStringMap(parent.Env, child.Env)

	out.Configure = mergePhase(parent.Configure, child.Configure)
	out.Build = mergePhase(parent.Build, child.Build)
	out.Install = mergePhase(parent.Install, child.Install)

	return out
}

// mergePhase overlays a child phase onto a parent phase. Shell and
// WorkingDir inherit from the parent unless the child sets them; Steps
// fully replaces the parent's list, but only when the child defines a
// step list of its own — a child that overrides only shell or
// working_dir keeps the parent's steps.
func mergePhase(parent, child *Phase) *Phase {
	if parent == nil && child == nil {
		return nil
	}
	if parent == nil {
		out := *child
		return &out
	}
	if child == nil {
		out := *parent
		return &out
	}

	out := *parent
	out.Shell = overrideString(parent.Shell, child.Shell)
	out.WorkingDir = overrideString(parent.WorkingDir, child.WorkingDir)
	if child.Steps != nil {
		out.Steps = child.Steps
	}
	return &out
}

func overrideString(parent, child string) string {
	if child != "" {
		return child
	}
	return parent
}

func mergeStringMap(parent, child map[string]string) map[string]string {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]string, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}
