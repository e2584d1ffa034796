package merge

import (
	"strings"

	"github.com/erraggy/oasmerge/oas"
)

// rewriter corrects one contribution's references after renames. Each
// element kind has its own function; only local component references, tag
// names, security requirement names and link operation identifiers listed in
// the rename map are touched.
type rewriter struct {
	renames RenameMap
	schemas map[*oas.Schema]struct{}

	// operationIDs also renames the identifiers operations declare, not just
	// the ones links name.
	operationIDs bool
}

func newRewriter(renames RenameMap) *rewriter {
	return &rewriter{
		renames: renames,
		schemas: make(map[*oas.Schema]struct{}),
	}
}

// ref returns the rewritten form of a "$ref" value.
func (w *rewriter) ref(ref string) string {
	section, name, ok := oas.ParseComponentRef(ref)
	if !ok {
		return ref
	}
	cat, ok := categoryForSection(section)
	if !ok {
		return ref
	}
	if to, ok := w.renames.Lookup(cat, name); ok {
		return oas.ComponentRef(section, to)
	}
	return ref
}

func (w *rewriter) document(doc *oas.Document) {
	if doc == nil {
		return
	}
	if c := doc.Components; c != nil {
		for _, s := range c.Schemas {
			w.schema(s)
		}
		for _, r := range c.Responses {
			w.response(r)
		}
		for _, p := range c.Parameters {
			w.parameter(p)
		}
		for _, e := range c.Examples {
			w.example(e)
		}
		for _, b := range c.RequestBodies {
			w.requestBody(b)
		}
		for _, h := range c.Headers {
			w.header(h)
		}
		for _, s := range c.SecuritySchemes {
			w.securityScheme(s)
		}
		for _, l := range c.Links {
			w.link(l)
		}
		for _, cb := range c.Callbacks {
			w.callback(cb)
		}
	}
	for _, item := range doc.Paths {
		w.pathItem(item)
	}
	doc.Security = w.security(doc.Security)
}

// item rewrites a single top-level item of the kinds that can name an
// operation. Other kinds are left alone.
func (w *rewriter) item(v any) {
	switch v := v.(type) {
	case *oas.PathItem:
		w.pathItem(v)
	case *oas.Callback:
		w.callback(v)
	case *oas.Link:
		w.link(v)
	case *oas.Response:
		w.response(v)
	}
}

func (w *rewriter) pathItem(item *oas.PathItem) {
	if item == nil {
		return
	}
	item.Ref = w.ref(item.Ref)
	for _, p := range item.Parameters {
		w.parameter(p)
	}
	for _, op := range item.Operations() {
		w.operation(op)
	}
}

func (w *rewriter) operation(op *oas.Operation) {
	if w.operationIDs {
		if to, ok := w.renames.Lookup(CategoryOperationIDs, op.OperationID); ok {
			op.OperationID = to
		}
	}
	for i, tag := range op.Tags {
		if to, ok := w.renames.Lookup(CategoryTags, tag); ok {
			op.Tags[i] = to
		}
	}
	for _, p := range op.Parameters {
		w.parameter(p)
	}
	w.requestBody(op.RequestBody)
	for _, r := range op.Responses {
		w.response(r)
	}
	for _, cb := range op.Callbacks {
		w.callback(cb)
	}
	op.Security = w.security(op.Security)
}

// security renames scheme names in requirement objects. nil stays nil.
func (w *rewriter) security(reqs []oas.SecurityRequirement) []oas.SecurityRequirement {
	for i, req := range reqs {
		renamed := false
		for name := range req {
			if _, ok := w.renames.Lookup(CategorySecuritySchemes, name); ok {
				renamed = true
				break
			}
		}
		if !renamed {
			continue
		}
		out := make(oas.SecurityRequirement, len(req))
		for name, scopes := range req {
			if to, ok := w.renames.Lookup(CategorySecuritySchemes, name); ok {
				name = to
			}
			out[name] = scopes
		}
		reqs[i] = out
	}
	return reqs
}

func (w *rewriter) parameter(p *oas.Parameter) {
	if p == nil {
		return
	}
	p.Ref = w.ref(p.Ref)
	w.schema(p.Schema)
	for _, e := range p.Examples {
		w.example(e)
	}
	for _, mt := range p.Content {
		w.mediaType(mt)
	}
}

func (w *rewriter) header(h *oas.Header) {
	if h == nil {
		return
	}
	h.Ref = w.ref(h.Ref)
	w.schema(h.Schema)
	for _, e := range h.Examples {
		w.example(e)
	}
	for _, mt := range h.Content {
		w.mediaType(mt)
	}
}

func (w *rewriter) requestBody(b *oas.RequestBody) {
	if b == nil {
		return
	}
	b.Ref = w.ref(b.Ref)
	for _, mt := range b.Content {
		w.mediaType(mt)
	}
}

func (w *rewriter) response(r *oas.Response) {
	if r == nil {
		return
	}
	r.Ref = w.ref(r.Ref)
	for _, h := range r.Headers {
		w.header(h)
	}
	for _, mt := range r.Content {
		w.mediaType(mt)
	}
	for _, l := range r.Links {
		w.link(l)
	}
}

func (w *rewriter) mediaType(mt *oas.MediaType) {
	if mt == nil {
		return
	}
	w.schema(mt.Schema)
	for _, e := range mt.Examples {
		w.example(e)
	}
	for _, enc := range mt.Encoding {
		if enc == nil {
			continue
		}
		for _, h := range enc.Headers {
			w.header(h)
		}
	}
}

func (w *rewriter) example(e *oas.Example) {
	if e == nil {
		return
	}
	e.Ref = w.ref(e.Ref)
}

func (w *rewriter) link(l *oas.Link) {
	if l == nil {
		return
	}
	l.Ref = w.ref(l.Ref)
	if to, ok := w.renames.Lookup(CategoryOperationIDs, l.OperationID); ok {
		l.OperationID = to
	}
}

func (w *rewriter) callback(cb *oas.Callback) {
	if cb == nil {
		return
	}
	cb.Ref = w.ref(cb.Ref)
	for _, item := range cb.Expressions {
		w.pathItem(item)
	}
}

func (w *rewriter) securityScheme(s *oas.SecurityScheme) {
	if s == nil {
		return
	}
	s.Ref = w.ref(s.Ref)
}

func (w *rewriter) schema(s *oas.Schema) {
	if s == nil {
		return
	}
	if _, seen := w.schemas[s]; seen {
		return
	}
	w.schemas[s] = struct{}{}

	s.Ref = w.ref(s.Ref)
	for _, p := range s.Properties {
		w.schema(p)
	}
	if s.AdditionalProperties != nil {
		w.schema(s.AdditionalProperties.Schema)
	}
	w.schema(s.Items)
	for _, sub := range s.AllOf {
		w.schema(sub)
	}
	for _, sub := range s.AnyOf {
		w.schema(sub)
	}
	for _, sub := range s.OneOf {
		w.schema(sub)
	}
	w.schema(s.Not)
	for _, sub := range s.PrefixItems {
		w.schema(sub)
	}
	w.schema(s.Contains)
	w.schema(s.PropertyNames)
	for _, sub := range s.PatternProperties {
		w.schema(sub)
	}
	for _, sub := range s.DependentSchemas {
		w.schema(sub)
	}
	w.schema(s.If)
	w.schema(s.Then)
	w.schema(s.Else)
	if s.UnevaluatedItems != nil {
		w.schema(s.UnevaluatedItems.Schema)
	}
	if s.UnevaluatedProperties != nil {
		w.schema(s.UnevaluatedProperties.Schema)
	}
	for _, sub := range s.Defs {
		w.schema(sub)
	}
	if d := s.Discriminator; d != nil {
		for value, target := range d.Mapping {
			d.Mapping[value] = w.discriminatorTarget(target)
		}
	}
}

// discriminatorTarget rewrites a mapping value given as a full reference or
// as a bare schema name.
func (w *rewriter) discriminatorTarget(target string) string {
	if strings.HasPrefix(target, "#") {
		return w.ref(target)
	}
	if strings.Contains(target, "/") {
		return target
	}
	if to, ok := w.renames.Lookup(CategorySchemas, target); ok {
		return to
	}
	return target
}
