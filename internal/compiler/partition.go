package compiler

import (
	"fmt"
	"sort"
	"time"

	"github.com/roach88/ctrlgen/internal/ir"
)

// ValueDefinition is one value of the signal under construction.
// Names may be blank or repeated while editing; Commit rejects what it cannot use.
type ValueDefinition struct {
	Name         string
	Instructions []string
}

// Partition models the assignment of instructions to the values of one
// control signal. Disjointness is enforced at Commit, not while editing: a
// value may transiently claim an instruction that another value also holds.
type Partition struct {
	values []ValueDefinition
	now    func() time.Time
}

// Option configures a Partition.
type Option func(*Partition)

// WithClock sets the wall clock used for created_at and signal_id.
func WithClock(now func() time.Time) Option {
	return func(p *Partition) {
		p.now = now
	}
}

// NewPartition returns an empty partition.
func NewPartition(opts ...Option) *Partition {
	p := &Partition{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromSignal loads a committed record back for editing. The record itself
// is not modified.
func FromSignal(sig ir.ControlSignal, opts ...Option) *Partition {
	p := NewPartition(opts...)
	for _, v := range sig.Values {
		p.AddValue(v.Name, v.Instructions...)
	}
	return p
}

// Len returns the number of value definitions.
func (p *Partition) Len() int {
	return len(p.values)
}

// Values returns a copy of the value definitions in insertion order.
func (p *Partition) Values() []ValueDefinition {
	out := make([]ValueDefinition, len(p.values))
	for i, v := range p.values {
		out[i] = ValueDefinition{Name: v.Name, Instructions: append([]string{}, v.Instructions...)}
	}
	return out
}

// NextDefaultName returns the placeholder name for the next added value.
func (p *Partition) NextDefaultName() string {
	return fmt.Sprintf("Value%d", len(p.values)+1)
}

// AddValue appends a value and returns its index.
func (p *Partition) AddValue(name string, instructions ...string) int {
	p.values = append(p.values, ValueDefinition{
		Name:         ir.NormalizeName(name),
		Instructions: dedupe(nil, instructions),
	})
	return len(p.values) - 1
}

// RemoveValue deletes the value at index.
func (p *Partition) RemoveValue(index int) error {
	if err := p.check(index); err != nil {
		return err
	}
	p.values = append(p.values[:index], p.values[index+1:]...)
	return nil
}

// RemoveLast deletes the most recently added value. It reports false when
// the partition is empty.
func (p *Partition) RemoveLast() bool {
	if len(p.values) == 0 {
		return false
	}
	p.values = p.values[:len(p.values)-1]
	return true
}

// Rename changes the name of the value at index.
func (p *Partition) Rename(index int, name string) error {
	if err := p.check(index); err != nil {
		return err
	}
	p.values[index].Name = ir.NormalizeName(name)
	return nil
}

// SetInstructions replaces the instructions of the value at index.
func (p *Partition) SetInstructions(index int, instructions []string) error {
	if err := p.check(index); err != nil {
		return err
	}
	p.values[index].Instructions = dedupe(nil, instructions)
	return nil
}

// Assign adds instructions to the value at index, skipping ones it already holds.
func (p *Partition) Assign(index int, instructions ...string) error {
	if err := p.check(index); err != nil {
		return err
	}
	p.values[index].Instructions = dedupe(p.values[index].Instructions, instructions)
	return nil
}

// Unassign removes instructions from the value at index.
func (p *Partition) Unassign(index int, instructions ...string) error {
	if err := p.check(index); err != nil {
		return err
	}
	drop := make(map[string]bool, len(instructions))
	for _, inst := range instructions {
		drop[ir.NormalizeName(inst)] = true
	}
	kept := p.values[index].Instructions[:0]
	for _, inst := range p.values[index].Instructions {
		if !drop[inst] {
			kept = append(kept, inst)
		}
	}
	p.values[index].Instructions = kept
	return nil
}

// ComputeConflicts maps every instruction claimed by more than one value to
// the names of the claiming values, in value order.
func (p *Partition) ComputeConflicts() map[string][]string {
	return conflicts(p.values)
}

// ClaimedBy returns the names of the values other than the one at except
// that hold instruction. Pass a negative except to consider every value.
func (p *Partition) ClaimedBy(instruction string, except int) []string {
	instruction = ir.NormalizeName(instruction)
	var owners []string
	for i, v := range p.values {
		if i == except {
			continue
		}
		for _, inst := range v.Instructions {
			if inst == instruction {
				owners = append(owners, v.Name)
				break
			}
		}
	}
	return owners
}

// UnknownInstructions returns the assigned instruction names the catalog
// does not know, sorted and deduplicated.
func (p *Partition) UnknownInstructions(known interface{ Has(string) bool }) []string {
	seen := make(map[string]bool)
	var unknown []string
	for _, v := range p.values {
		for _, inst := range v.Instructions {
			if seen[inst] || known.Has(inst) {
				continue
			}
			seen[inst] = true
			unknown = append(unknown, inst)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Commit validates the partition and produces a new ControlSignal.
//
// Values with a blank name are left out. Commit fails when the signal name
// is blank, no named value remains, two named values share a name, or an
// instruction is claimed by more than one named value. A value with no
// instructions is allowed.
func (p *Partition) Commit(name string, enc ir.EncodingType) (ir.ControlSignal, error) {
	name = ir.NormalizeName(name)
	if name == "" {
		return ir.ControlSignal{}, &CompileError{
			Code:    CodeMissingSignalName,
			Field:   "name",
			Message: "signal name is required",
			Err:     ErrMissingSignalName,
		}
	}
	if !enc.Valid() {
		return ir.ControlSignal{}, &CompileError{
			Code:    CodeInvalidEncoding,
			Field:   "encoding",
			Message: fmt.Sprintf("unknown encoding type %q: must be one of %v", enc, ir.EncodingTypes),
			Err:     ErrInvalidEncoding,
		}
	}

	var named []ValueDefinition
	for _, v := range p.values {
		if v.Name != "" {
			named = append(named, v)
		}
	}
	if len(named) == 0 {
		return ir.ControlSignal{}, &CompileError{
			Code:    CodeEmptyConfiguration,
			Field:   "values",
			Message: "at least one value with a name is required",
			Err:     ErrEmptyConfiguration,
		}
	}

	seen := make(map[string]bool)
	var dupNames []string
	for _, v := range named {
		if seen[v.Name] {
			dupNames = append(dupNames, v.Name)
		}
		seen[v.Name] = true
	}
	if len(dupNames) > 0 {
		return ir.ControlSignal{}, &CompileError{
			Code:    CodeDuplicateValueName,
			Field:   "values",
			Message: fmt.Sprintf("value names must be unique: %v", dupNames),
			Values:  dupNames,
			Err:     ErrDuplicateValueName,
		}
	}

	if c := conflicts(named); len(c) > 0 {
		insts := make([]string, 0, len(c))
		for inst := range c {
			insts = append(insts, inst)
		}
		sort.Strings(insts)
		return ir.ControlSignal{}, duplicateAssignmentError(c, insts)
	}

	mapping := make(ir.ValueMapping, len(named))
	for i, v := range named {
		mapping[i] = ir.Value{Name: v.Name, Instructions: append([]string{}, v.Instructions...)}
	}

	now := p.now()
	return ir.ControlSignal{
		Name:         name,
		EncodingType: enc,
		Width:        ir.Width(enc, len(mapping)),
		Values:       mapping,
		CreatedAt:    ir.FormatTimestamp(now),
		Instructions: mapping.Instructions(),
		SignalID:     ir.NewSignalID(now),
	}, nil
}

func (p *Partition) check(index int) error {
	if index < 0 || index >= len(p.values) {
		return fmt.Errorf("value index %d out of range [0,%d)", index, len(p.values))
	}
	return nil
}

func conflicts(values []ValueDefinition) map[string][]string {
	owners := make(map[string][]string)
	for _, v := range values {
		for _, inst := range v.Instructions {
			owners[inst] = append(owners[inst], v.Name)
		}
	}
	out := make(map[string][]string)
	for inst, names := range owners {
		if len(names) > 1 {
			out[inst] = names
		}
	}
	return out
}

// dedupe appends the normalized, non-empty names of add to base, skipping
// names already present.
func dedupe(base []string, add []string) []string {
	out := append([]string{}, base...)
	seen := make(map[string]bool, len(out))
	for _, inst := range out {
		seen[inst] = true
	}
	for _, inst := range add {
		inst = ir.NormalizeName(inst)
		if inst == "" || seen[inst] {
			continue
		}
		seen[inst] = true
		out = append(out, inst)
	}
	return out
}
