// Package recipe implements the declarative recipe and image model (C1):
// parsing, parent/child inheritance, version expansion, and the
// image/target dependency-map resolution rule described in §3/§4.1.
//
// A Recipe is loaded from a directory containing recipe.yml (or
// recipe.yaml). Recipes may declare `from: <parent>` to inherit fields from
// another recipe in the same set; LoadAll resolves the inheritance graph in
// two passes and performs a field-by-field deep merge, per category
// (scalar, list, map, script phase).
package recipe
