package cases

import (
	"fmt"
	"regexp"

	"github.com/prometheusresearch/pbbt/internal/schema"
	"github.com/prometheusresearch/pbbt/internal/ui"
)

// conditionCheck accepts a state key or a list of state keys.
var conditionCheck = schema.OneOf(schema.String, schema.ListOf(schema.String))

// condFields returns the control fields shared by every input schema:
// skip disables the case outright, if runs it only when a state key is
// truthy, unless suppresses it when one is.
func condFields() []schema.FieldSpec {
	return []schema.FieldSpec{
		schema.Field("skip", schema.Bool),
		schema.Field("if_", conditionCheck),
		schema.Field("unless", conditionCheck),
	}
}

// inputFields appends the shared control fields to the kind-specific
// ones.
func inputFields(fields ...schema.FieldSpec) []schema.FieldSpec {
	return append(fields, condFields()...)
}

// ignoreField is carried by every kind whose output is matched as
// text: true suppresses the comparison, a regular expression erases
// volatile spans before it.
func ignoreField() schema.FieldSpec {
	return schema.Field("ignore", schema.OneOf(schema.Bool, schema.String))
}

// validateIgnore rejects documents whose ignore pattern would not
// compile, so the failure surfaces at load time with a location.
func validateIgnore(mapping map[string]any) error {
	pattern, ok := mapping["ignore"].(string)
	if !ok {
		return nil
	}
	if _, err := regexp.Compile("(?m)" + pattern); err != nil {
		return fmt.Errorf("invalid ignore pattern: %w", err)
	}
	return nil
}

func choice(shortcut, help string) ui.Choice {
	return ui.Choice{Shortcut: shortcut, Help: help}
}
