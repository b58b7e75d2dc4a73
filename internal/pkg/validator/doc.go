// Package validator checks usecase input structs against their `validate`
// tags and reports failures keyed by snake_case field name.
package validator
