// Package rule defines the safe-parse contract form fields are validated
// with. A Rule receives a raw value (a typed internal value or a display
// string/bool) and returns a Result carrying either the parsed data or a list
// of Issues with stable codes (too_small, invalid_type, ...).
//
// Rules come from the adapters in pkg/rule/goskema, pkg/rule/openapi and
// pkg/rule/jsonschema, or from any type implementing Rule.
package rule
