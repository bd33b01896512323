// Package registry provides the central "glue" for the rule-kind system.
//
// The Registry maps the block types used in manifests (py_library, py_test,
// filegroup, ...) to a RuleKind: the attribute schema the parser enforces
// and the Go function that builds a target of that kind.
//
// During application startup, modules register their kinds and the registry
// is validated, so a malformed kind fails fast instead of surfacing while a
// manifest is being parsed.
package registry
