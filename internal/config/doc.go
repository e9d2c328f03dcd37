// Package config loads and validates pkger's configuration file (§6).
//
// The configuration file is YAML, decoded with gopkg.in/yaml.v3 (the
// library cochaviz-bottle and invowk-invowk both reach for to decode their
// own configuration), and named ".pkger.yml" under the configuration
// directory returned by internal/paths. CLI flags, applied by the caller,
// override config file values; this package only knows about the file.
package config
