package recipe

import "errors"

// Sentinel error categories (§7: RecipeError covers all of these; each job
// referencing a failed recipe is skipped, the run's exit code still
// reflects the failure).
var (
	ErrParse            = errors.New("recipe parse error")
	ErrDuplicateRecipe  = errors.New("duplicate recipe")
	ErrInheritanceCycle = errors.New("inheritance cycle")
	ErrValidate         = errors.New("recipe validation error")
	ErrImageConflict    = errors.New("conflicting image target")
)
