package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/ctrlgen/internal/ir"
)

// instructionsPerLine is how many quoted names a classification accessor
// lists per line.
const instructionsPerLine = 5

// Templates holds custom template text. An empty field selects the
// built-in default for that artifact.
type Templates struct {
	Ctrl  string
	Field string
}

// Renderer turns a ControlSignal into Ctrl and Field source text.
type Renderer struct {
	templates  Templates
	autoFormat bool
	now        func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplates sets custom templates.
func WithTemplates(t Templates) Option {
	return func(r *Renderer) {
		r.templates = t
	}
}

// WithAutoFormat toggles the re-indenting pass. It is on by default.
func WithAutoFormat(on bool) Option {
	return func(r *Renderer) {
		r.autoFormat = on
	}
}

// WithClock sets the clock used for {generation_time}.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer returns a renderer using the built-in templates unless
// overridden.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{autoFormat: true, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Template returns the template the renderer uses for a.
func (r *Renderer) Template(a Artifact) string {
	custom := r.templates.Ctrl
	if a == ArtifactField {
		custom = r.templates.Field
	}
	if custom != "" {
		return custom
	}
	return DefaultTemplate(a)
}

// Render produces the source text of one artifact.
func (r *Renderer) Render(sig ir.ControlSignal, a Artifact) (string, error) {
	switch a {
	case ArtifactCtrl:
		return r.RenderCtrl(sig), nil
	case ArtifactField:
		return r.RenderField(sig), nil
	default:
		return "", fmt.Errorf("unknown artifact %q", a)
	}
}

// RenderCtrl produces the Ctrl object. {value_mappings} is not a Ctrl
// placeholder and stays in the output untouched.
func (r *Renderer) RenderCtrl(sig ir.ControlSignal) string {
	vars := r.commonVars(sig)
	return r.finish(Substitute(r.Template(ArtifactCtrl), vars))
}

// RenderField produces the Field object.
func (r *Renderer) RenderField(sig ir.ControlSignal) string {
	vars := r.commonVars(sig)
	vars[PlaceholderValueMappings] = ValueMappings(sig)
	return r.finish(Substitute(r.Template(ArtifactField), vars))
}

func (r *Renderer) commonVars(sig ir.ControlSignal) map[string]string {
	return map[string]string{
		PlaceholderSignalName:     sig.Name,
		PlaceholderEncodingType:   sig.EncodingType.String(),
		PlaceholderSignalWidth:    strconv.Itoa(sig.Width),
		PlaceholderGenerationTime: ir.FormatTimestamp(r.now()),
		PlaceholderValuesList:     ValuesList(sig),
		PlaceholderMethodsList:    MethodsList(sig),
	}
}

func (r *Renderer) finish(code string) string {
	if r.autoFormat {
		return Format(code)
	}
	return code
}

// Substitute replaces every {name} token whose name is a key of vars.
// Replacement happens in one pass, so placeholder text inside a
// substituted value is never expanded again. Unknown tokens are kept.
func Substitute(tmpl string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// ValuesList declares one enumeration member per value, in partition order.
func ValuesList(sig ir.ControlSignal) string {
	var b strings.Builder
	for _, v := range sig.Values {
		fmt.Fprintf(&b, "  val %s = Value\n", v.Name)
	}
	return b.String()
}

// MethodsList emits one classification accessor per value. Instructions
// are quoted five to a line; a value with none gets an empty sequence.
func MethodsList(sig ir.ControlSignal) string {
	var b strings.Builder
	for _, v := range sig.Values {
		if len(v.Instructions) == 0 {
			fmt.Fprintf(&b, "  def is%s: Seq[String] = Seq.empty[String]\n\n", v.Name)
			continue
		}

		var lines []string
		for i := 0; i < len(v.Instructions); i += instructionsPerLine {
			end := min(i+instructionsPerLine, len(v.Instructions))
			quoted := make([]string, 0, end-i)
			for _, inst := range v.Instructions[i:end] {
				quoted = append(quoted, "\""+inst+"\"")
			}
			lines = append(lines, "    "+strings.Join(quoted, ", "))
		}

		fmt.Fprintf(&b, "  def is%s: Seq[String] = Seq(\n", v.Name)
		b.WriteString(strings.Join(lines, ",\n"))
		b.WriteString("\n  )\n\n")
	}
	return b.String()
}

// ValueMappings pairs each value's accessor with its enumeration member,
// one entry per line, comma separated with no trailing comma.
func ValueMappings(sig ir.ControlSignal) string {
	entries := make([]string, len(sig.Values))
	for i, v := range sig.Values {
		entries[i] = fmt.Sprintf("    %s.is%s -> %s.%s", sig.Name, v.Name, sig.Name, v.Name)
	}
	return strings.Join(entries, ",\n")
}
