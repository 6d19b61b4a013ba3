package compiler

import (
	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/queryir"
)

// QueryBuilder assembles a request step by step.
//
//	q, err := compiler.NewQuery().
//		Prefix("foaf", "http://xmlns.com/foaf/0.1/").
//		Where(ir.Text("foaf:name", ir.OpEQ, "Alice")).
//		Limit(10).
//		Compile(nil)
//
// The first error (a conflicting prefix) is kept and returned by Request
// and Compile; later calls still record their arguments.
type QueryBuilder struct {
	req ir.Request
	err error
}

// NewQuery starts a request with the given prefix tables merged in order.
func NewQuery(prefixes ...*ir.PrefixTable) *QueryBuilder {
	b := &QueryBuilder{req: ir.Request{Prefixes: ir.NewPrefixTable()}}
	for _, p := range prefixes {
		if err := b.req.Prefixes.Merge(p); err != nil && b.err == nil {
			b.err = err
		}
	}
	return b
}

// Prefix declares short -> namespace.
func (b *QueryBuilder) Prefix(short, namespace string) *QueryBuilder {
	if err := b.req.Prefixes.Add(short, namespace); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Where appends criteria.
func (b *QueryBuilder) Where(criteria ...ir.Criterion) *QueryBuilder {
	b.req.Criteria = append(b.req.Criteria, criteria...)
	return b
}

// RootType sets the type every result must have.
func (b *QueryBuilder) RootType(t string) *QueryBuilder {
	b.req.RootType = t
	return b
}

// Limit sets the LIMIT modifier.
func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	b.req.Limit = n
	return b
}

// Offset sets the OFFSET modifier.
func (b *QueryBuilder) Offset(n int) *QueryBuilder {
	b.req.Offset = n
	return b
}

// Request returns the assembled request.
func (b *QueryBuilder) Request() (ir.Request, error) {
	return b.req, b.err
}

// Compile compiles the assembled request with c, or with New() if c is nil.
func (b *QueryBuilder) Compile(c *Compiler) (*queryir.Select, error) {
	if b.err != nil {
		return nil, b.err
	}
	if c == nil {
		c = New()
	}
	return c.Compile(b.req)
}
