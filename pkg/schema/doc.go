// Package schema describes forms: one Field descriptor per field name, each
// carrying the rule that validates the internal value and, optionally, an
// external rule plus the converter pair that maps between the two sides.
package schema
