package buildopts

const (
	// Priorities of the layers a resolution merges. Higher numbers win.
	ScopePriorityTarget    = 100
	ScopePriorityLocal     = 200
	ScopePriorityOverrides = 300
)

const (
	ScopeTarget    = "target"
	ScopeLocal     = "local"
	ScopeOverrides = "overrides"
)

// TargetLocalOverrides assembles the canonical three layer stack: target
// options, overridden by local options, overridden by explicit overrides.
func TargetLocalOverrides(target, local, overrides Layer) (*Stack, error) {
	target.Scope = NewScope(ScopeTarget, ScopePriorityTarget, WithScopeLabel("Target options"))
	local.Scope = NewScope(ScopeLocal, ScopePriorityLocal, WithScopeLabel("Local options"))
	overrides.Scope = NewScope(ScopeOverrides, ScopePriorityOverrides, WithScopeLabel("Overrides"))
	return NewStack(overrides, local, target)
}
