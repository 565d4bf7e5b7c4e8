// Package emit implements the Runtime Emitter (C6): given the set of helper
// names a transformation used, it renders the self-contained runtime
// definition block — a block that (i) imports and
// constructs the Chaos Engine, (ii) defines each helper as a thin wrapper
// bound to it, and (iii) binds the secure-condition helper. Emission order
// is the registry's deterministic topological-then-alphabetic closure order,
// so two transformations over the same helper set are byte-identical.
package emit

import (
	"fmt"
	"strings"

	"github.com/jihwankim/kinda/pkg/registry"
)

// UnknownHelperError is a programmer error: the registry referenced a helper
// name this package has no template for. It means a construct was added to
// the registry without a matching entry in helperTemplates.
type UnknownHelperError struct {
	Name string
}

func (e *UnknownHelperError) Error() string {
	return fmt.Sprintf("emit: no runtime template registered for helper %q", e.Name)
}

// Runtime renders the runtime block for a set of used constructs and reports
// the ordered helper names that went into it, so callers (the pipeline,
// diagnostics, reporting) can log exactly what was emitted.
func Runtime(reg *registry.Registry, usedConstructs []string) ([]byte, []string, error) {
	helpers, err := reg.HelpersClosure(usedConstructs)
	if err != nil {
		return nil, nil, err
	}
	b, err := FromHelpers(helpers)
	return b, helpers, err
}

// FromHelpers renders the runtime block directly from an already-closed,
// already-ordered helper list (the shape transform.Result.Helpers carries,
// since the Block Transformer computes the closure itself during rewriting).
// Rendering is otherwise identical to Runtime.
func FromHelpers(helpers []string) ([]byte, error) {
	if len(helpers) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString("\n")

	for _, name := range helpers {
		body, ok := helperTemplates[name]
		if !ok {
			return nil, &UnknownHelperError{Name: name}
		}
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return []byte(strings.TrimRight(sb.String(), "\n") + "\n"), nil
}
