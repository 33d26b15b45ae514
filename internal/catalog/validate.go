package catalog

import "fmt"

// EncodingWidth is the expected encoding length of a 32-bit instruction.
const EncodingWidth = 32

// IssueKind categorizes a validation finding.
type IssueKind string

const (
	IssueLength  IssueKind = "length"
	IssueCharset IssueKind = "charset"
)

// Issue is one validation finding for one instruction.
type Issue struct {
	Instruction string    `json:"instruction"`
	Kind        IssueKind `json:"kind"`
	Message     string    `json:"message"`
}

func (i Issue) String() string {
	return i.Message
}

// Validate checks every instruction's encoding length against EncodingWidth
// and its alphabet against {0,1,?}. Findings are returned in instruction order.
func Validate(instrs []Instruction) []Issue {
	var issues []Issue
	for _, inst := range instrs {
		if n := len(inst.Encoding); n != EncodingWidth {
			issues = append(issues, Issue{
				Instruction: inst.Name,
				Kind:        IssueLength,
				Message:     fmt.Sprintf("instruction %q encoding is %d bits, want %d", inst.Name, n, EncodingWidth),
			})
		}
		if !isCanonicalEncoding(inst.Encoding) {
			issues = append(issues, Issue{
				Instruction: inst.Name,
				Kind:        IssueCharset,
				Message:     fmt.Sprintf("instruction %q encoding has characters outside {0,1,?}: %q", inst.Name, inst.Encoding),
			})
		}
	}
	return issues
}
