package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/roach88/ctrlgen/internal/ir"
)

// Catalog is the in-memory set of instructions available for classification.
// A load replaces the previous contents wholesale, or not at all.
type Catalog struct {
	instructions []Instruction
	index        map[string]int
}

// New returns a catalog holding instrs. Later duplicates of a name shadow
// earlier ones in Lookup but every entry is kept in order.
func New(instrs []Instruction) *Catalog {
	c := &Catalog{}
	c.replace(instrs)
	return c
}

func (c *Catalog) replace(instrs []Instruction) {
	index := make(map[string]int, len(instrs))
	for i, inst := range instrs {
		index[inst.Name] = i
	}
	c.instructions = instrs
	c.index = index
}

// Parse reads a flat catalog. Each non-empty line is split on whitespace:
// name, extension tag(s), encoding, then argument names.
//
// The converter writes multi-tag extensions space-joined, so every token
// between the name and the first token made only of 0, 1 and ? is taken as an
// extension tag. Without such a token the third field is the encoding. A
// second field that is already an encoding means the row has no extension.
func Parse(r io.Reader) ([]Instruction, error) {
	var instrs []Instruction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, &MalformedRowError{Line: line, Text: text}
		}

		encIdx := 1
		if !isCanonicalEncoding(fields[1]) {
			if len(fields) < 3 {
				return nil, &MalformedRowError{Line: line, Text: text}
			}
			encIdx = 2
			for i := 2; i < len(fields); i++ {
				if isCanonicalEncoding(fields[i]) {
					encIdx = i
					break
				}
			}
		}

		args := []string{}
		if encIdx+1 < len(fields) {
			args = append(args, fields[encIdx+1:]...)
		}
		instrs = append(instrs, Instruction{
			Name:      ir.NormalizeName(fields[0]),
			Extension: strings.Join(fields[1:encIdx], " "),
			Encoding:  fields[encIdx],
			Args:      args,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return instrs, nil
}

// Load parses r and replaces the catalog contents. On error the previous
// contents are left intact.
func (c *Catalog) Load(r io.Reader) error {
	instrs, err := Parse(r)
	if err != nil {
		return err
	}
	c.replace(instrs)
	return nil
}

// LoadFile loads a flat catalog from path.
func (c *Catalog) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	if err := c.Load(f); err != nil {
		return fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return nil
}

// Len returns the number of loaded instructions.
func (c *Catalog) Len() int {
	return len(c.instructions)
}

// Instructions returns a copy of the loaded instructions in file order.
func (c *Catalog) Instructions() []Instruction {
	return append([]Instruction(nil), c.instructions...)
}

// Names returns the instruction names in file order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.instructions))
	for i, inst := range c.instructions {
		names[i] = inst.Name
	}
	return names
}

// Lookup finds an instruction by name.
func (c *Catalog) Lookup(name string) (Instruction, bool) {
	i, ok := c.index[name]
	if !ok {
		return Instruction{}, false
	}
	return c.instructions[i], true
}

// Has reports whether an instruction named name is loaded.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Extensions returns every distinct extension tag, sorted.
func (c *Catalog) Extensions() []string {
	return Extensions(c.instructions)
}

// Search returns the instructions whose name, extension tags, encoding or
// arguments contain text, ignoring case. An empty query matches everything.
func (c *Catalog) Search(text string) []Instruction {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return c.Instructions()
	}
	var out []Instruction
	for _, inst := range c.instructions {
		haystack := strings.ToLower(strings.Join([]string{
			inst.Name, inst.Extension, inst.Encoding, strings.Join(inst.Args, " "),
		}, " "))
		if strings.Contains(haystack, query) {
			out = append(out, inst)
		}
	}
	return out
}

// Extensions returns every distinct extension tag across instrs, sorted.
// An instruction may contribute more than one tag.
func Extensions(instrs []Instruction) []string {
	seen := make(map[string]bool)
	for _, inst := range instrs {
		for _, ext := range inst.Extensions() {
			seen[ext] = true
		}
	}
	out := make([]string, 0, len(seen))
	for ext := range seen {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
