// Package ir provides the record types shared by every ctrlgen package.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - ControlSignal is immutable once committed; edits produce a new record
//   - Values keep definition order, which is the emission order of generated code
//   - Width is a pure function of encoding type and value count
//   - All JSON tags use snake_case and match the record store document
package ir
