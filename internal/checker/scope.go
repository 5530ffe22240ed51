package checker

import (
	"quill/internal/source"
	"quill/internal/types"
)

// scopeFrame is one entry of the checker's scope stack. Values hold ordinary
// bindings such as callback parameters; typeParams are the opaque bindings
// registered while a generic candidate is being evaluated. Narrowing facts
// live on the Checker itself so they survive the call that established them.
type scopeFrame struct {
	values     map[source.StringID]types.TypeID
	typeParams map[types.TypeID]struct{}
	thisTy     types.TypeID

	savedArityUnknown bool
}

// pushScope enters a nested scope, snapshotting the per-call scratch state.
// Every pushScope must be paired with popScope on all exit paths.
func (c *Checker) pushScope() {
	c.scopes = append(c.scopes, scopeFrame{
		savedArityUnknown: c.arityUnknown,
	})
}

// popScope exits the innermost scope and restores the scratch state so
// sibling call expressions never observe each other's flags.
func (c *Checker) popScope() {
	frame := &c.scopes[len(c.scopes)-1]
	c.arityUnknown = frame.savedArityUnknown
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Checker) top() *scopeFrame {
	if len(c.scopes) == 0 {
		c.pushScope()
	}
	return &c.scopes[len(c.scopes)-1]
}

func (c *Checker) bindValue(name source.StringID, ty types.TypeID) {
	frame := c.top()
	if frame.values == nil {
		frame.values = make(map[source.StringID]types.TypeID, 4)
	}
	frame.values[name] = ty
}

func (c *Checker) bindThis(ty types.TypeID) {
	c.top().thisTy = ty
}

func (c *Checker) thisType() types.TypeID {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if c.scopes[i].thisTy != types.NoTypeID {
			return c.scopes[i].thisTy
		}
	}
	return types.NoTypeID
}

// registerTypeParam marks a type parameter as an opaque, locally visible
// binding for the duration of the current scope.
func (c *Checker) registerTypeParam(id types.TypeID) {
	frame := c.top()
	if frame.typeParams == nil {
		frame.typeParams = make(map[types.TypeID]struct{}, 4)
	}
	frame.typeParams[id] = struct{}{}
}

func (c *Checker) typeParamInScope(id types.TypeID) bool {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if _, ok := c.scopes[i].typeParams[id]; ok {
			return true
		}
	}
	return false
}

// recordFact records a narrowed type for an identifier. A later guard over
// the same identifier overwrites the earlier fact.
func (c *Checker) recordFact(name source.StringID, ty types.TypeID) {
	c.facts[name] = ty
}

// Fact returns the narrowed type recorded for the identifier, if any.
func (c *Checker) Fact(name source.StringID) (types.TypeID, bool) {
	ty, ok := c.facts[name]
	return ty, ok
}

// lookupValue searches scope-local bindings first (callback parameters
// shadow everything), then narrowing facts, then the global environment.
func (c *Checker) lookupValue(name source.StringID) (types.TypeID, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if ty, ok := c.scopes[i].values[name]; ok {
			return ty, true
		}
	}
	if ty, ok := c.facts[name]; ok {
		return ty, true
	}
	return c.env.Value(name)
}
