// Package codegen renders control signals into Chisel source text.
//
// A signal produces two artifacts: a Ctrl object enumerating the values
// with one classification accessor per value, and a Field object mapping
// each accessor to its enumeration member. Both come from plain text
// templates with {placeholder} tokens substituted in a single pass.
package codegen
