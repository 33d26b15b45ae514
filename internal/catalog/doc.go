// Package catalog loads the instruction descriptors that control signals
// classify.
//
// Two ingestion paths produce the same Instruction model:
//   - Flat catalog: one instruction per line, "name extension encoding [arg...]"
//   - Structured database: a JSON object of name → {encoding, variable_fields, extension}
//
// Encodings are canonicalized to the ternary alphabet {0,1,?} by
// NormalizeEncoding. Positions are never trimmed or shifted: generated decode
// logic relies on bit positions lining up.
package catalog
