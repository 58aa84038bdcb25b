package validator

// The validator is the contract guard at both ends of the translator.
//
// On the way in, every loaded graph description is unified with #Graph
// before the attribute pass sees it, so a misspelled top-level key or an
// edge without endpoints fails with a schema error naming the field instead
// of surfacing later as a confusing translation error.
//
// On the way out, fact tables exported by "dfg2blif facts" are checked
// against #FactTables so downstream consumers never receive a relation with
// a field they do not expect.

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
)

//go:embed graph_schema.cue
var graphSchemaFS embed.FS

//go:embed facts_schema.cue
var factsSchemaFS embed.FS

// Validator checks graph descriptions against the #Graph contract.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a new Validator with the embedded graph schema.
func New() (*Validator, error) {
	ctx, schema, err := compileSchema(graphSchemaFS, "graph_schema.cue")
	if err != nil {
		return nil, err
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

func compileSchema(fs embed.FS, name string) (*cue.Context, cue.Value, error) {
	ctx := cuecontext.New()

	schemaBytes, err := fs.ReadFile(name)
	if err != nil {
		return nil, cue.Value{}, fmt.Errorf("loading embedded schema %s: %w", name, err)
	}

	schema := ctx.CompileBytes(schemaBytes, cue.Filename(name))
	if schema.Err() != nil {
		return nil, cue.Value{}, fmt.Errorf("compiling schema %s: %w", name, schema.Err())
	}
	return ctx, schema, nil
}

func (v *Validator) graphDef() (cue.Value, error) {
	def := v.schema.LookupPath(cue.ParsePath("#Graph"))
	if def.Err() != nil {
		return def, fmt.Errorf("looking up #Graph definition: %w", def.Err())
	}
	return def, nil
}

// Validate checks that a description conforms to #Graph.
func (v *Validator) Validate(desc *dfg.Description) error {
	jsonBytes, err := marshalDescription(desc)
	if err != nil {
		return fmt.Errorf("marshaling graph to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// marshalDescription renders desc as JSON. A graph without nodes is
// written with an empty node list.
func marshalDescription(desc *dfg.Description) ([]byte, error) {
	if desc.Nodes == nil {
		c := *desc
		c.Nodes = []dfg.NodeDescription{}
		desc = &c
	}
	return json.Marshal(desc)
}

// ValidateJSON validates JSON bytes directly against #Graph.
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	_, err := v.unify(jsonBytes, "graph.json")
	return err
}

// ValidationErrors returns every schema violation of desc, one per entry,
// each prefixed with the path of the offending field.
func (v *Validator) ValidationErrors(desc *dfg.Description) []string {
	jsonBytes, err := marshalDescription(desc)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	def, err := v.graphDef()
	if err != nil {
		return []string{err.Error()}
	}
	data := v.ctx.CompileBytes(jsonBytes)
	if data.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", data.Err())}
	}

	err = def.Unify(data).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}
	var errs []string
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		errs = append(errs, msg)
	}
	return errs
}

// DecodeGraph compiles CUE or JSON source, checks it against #Graph and
// returns the description it holds. Numeric and boolean attribute values
// are converted to their string form.
func (v *Validator) DecodeGraph(src []byte, filename string) (*dfg.Description, error) {
	unified, err := v.unify(src, filename)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := unified.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", filename, err)
	}

	var raw rawGraph
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}
	return raw.description(), nil
}

func (v *Validator) unify(src []byte, filename string) (cue.Value, error) {
	def, err := v.graphDef()
	if err != nil {
		return def, err
	}

	data := v.ctx.CompileBytes(src, cue.Filename(filename))
	if data.Err() != nil {
		return data, fmt.Errorf("compiling %s: %w", filename, data.Err())
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return unified, fmt.Errorf("schema validation failed: %w", err)
	}
	return unified, nil
}

type rawAttrs map[string]json.RawMessage

type rawGraph struct {
	Name       string   `json:"name"`
	Undirected bool     `json:"undirected"`
	Attrs      rawAttrs `json:"attrs"`
	Nodes      []struct {
		Name  string   `json:"name"`
		Attrs rawAttrs `json:"attrs"`
	} `json:"nodes"`
	Edges []struct {
		Tail  string   `json:"tail"`
		Head  string   `json:"head"`
		Attrs rawAttrs `json:"attrs"`
	} `json:"edges"`
}

func (r *rawGraph) description() *dfg.Description {
	d := &dfg.Description{
		Name:       r.Name,
		Undirected: r.Undirected,
		Attrs:      r.Attrs.strings(),
	}
	for _, n := range r.Nodes {
		d.Nodes = append(d.Nodes, dfg.NodeDescription{Name: n.Name, Attrs: n.Attrs.strings()})
	}
	for _, e := range r.Edges {
		d.Edges = append(d.Edges, dfg.EdgeDescription{Tail: e.Tail, Head: e.Head, Attrs: e.Attrs.strings()})
	}
	return d
}

// strings renders each value the way it was written: strings unquoted,
// numbers and booleans verbatim.
func (a rawAttrs) strings() map[string]string {
	res := make(map[string]string, len(a))
	for k, raw := range a {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			res[k] = s
			continue
		}
		res[k] = string(bytes.TrimSpace(raw))
	}
	return res
}

// FactsValidator validates relational fact tables against the facts schema.
type FactsValidator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewFactsValidator creates a validator for relational fact tables.
func NewFactsValidator() (*FactsValidator, error) {
	ctx, schema, err := compileSchema(factsSchemaFS, "facts_schema.cue")
	if err != nil {
		return nil, err
	}
	return &FactsValidator{ctx: ctx, schema: schema}, nil
}

// Validate checks that the fact tables conform to the facts schema.
func (v *FactsValidator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling facts to JSON: %w", err)
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling facts as CUE: %w", dataValue.Err())
	}

	factsDef := v.schema.LookupPath(cue.ParsePath("#FactTables"))
	if factsDef.Err() != nil {
		return fmt.Errorf("looking up #FactTables definition: %w", factsDef.Err())
	}

	unified := factsDef.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("facts schema validation failed: %w", err)
	}

	return nil
}
