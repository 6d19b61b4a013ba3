package compiler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/pathq/internal/ir"
	"github.com/roach88/pathq/internal/metrics"
	"github.com/roach88/pathq/internal/queryir"
	"github.com/roach88/pathq/internal/selector"
)

// RootVar is the variable every compiled query projects. The allocator only
// produces "varN" names, so it never collides with a fresh variable.
const RootVar queryir.Var = "root"

// Compiler turns requests into queries.
//
// A Compiler holds no per-compilation state and is safe for concurrent use
// once constructed.
type Compiler struct {
	alloc   *Allocator
	logger  *slog.Logger
	metrics *metrics.Metrics
	funcs   Functions
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithAllocator sets the variable allocator. Defaults to DefaultAllocator.
func WithAllocator(a *Allocator) Option {
	return func(c *Compiler) {
		c.alloc = a
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// WithMetrics records compilations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Compiler) {
		c.metrics = m
	}
}

// WithFunction registers the lowering of the custom node test named iri.
// Path expressions reach it through any prefix that expands to iri.
func WithFunction(iri string, fn TestFunc) Option {
	return func(c *Compiler) {
		c.funcs[iri] = fn
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		alloc:  DefaultAllocator,
		logger: slog.Default(),
		funcs:  make(Functions),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile translates criteria into a query projecting the resources that
// satisfy all of them, using the default compiler.
func Compile(criteria []ir.Criterion, prefixes *ir.PrefixTable) (*queryir.Select, error) {
	return New().Compile(ir.Request{Prefixes: prefixes, Criteria: criteria})
}

// Compile translates req into a query.
//
// The query binds RootVar to a resource of req's root type and adds, per
// criterion, the patterns of its path plus the filter of its comparison.
// Any failure aborts the compilation; no partial query is returned.
func (c *Compiler) Compile(req ir.Request) (*queryir.Select, error) {
	start := time.Now()
	q, vars, err := c.compile(req)
	if err != nil {
		c.metrics.ObserveFailure(string(Code(err)), time.Since(start))
		c.logger.Debug("compilation failed",
			"criteria", len(req.Criteria),
			"error", err,
		)
		return nil, err
	}
	c.metrics.ObserveSuccess(len(req.Criteria), vars, time.Since(start))
	c.logger.Debug("compilation finished",
		"criteria", len(req.Criteria),
		"variables", vars,
		"duration", time.Since(start),
	)
	return q, nil
}

func (c *Compiler) compile(req ir.Request) (*queryir.Select, int, error) {
	if req.Limit < 0 || req.Offset < 0 {
		return nil, 0, newError(ErrCodeInvalidRequest, "limit and offset must not be negative")
	}
	if invalid := req.Prefixes.Invalid(); len(invalid) > 0 {
		return nil, 0, newError(ErrCodeInvalidRequest, "prefix name %q is not valid in SPARQL", invalid[0])
	}
	rootType, err := resolveRootType(req.EffectiveRootType(), req.Prefixes)
	if err != nil {
		return nil, 0, err
	}

	where := &queryir.Group{}
	where.Add(&queryir.Triple{Subject: RootVar, Predicate: queryir.IRI(queryir.RDFType), Object: rootType})

	e := &evaluator{
		prefixes: req.Prefixes,
		alloc:    c.alloc,
		funcs:    c.funcs,
		sink:     newSink(where),
	}
	e.sink.introduce(RootVar)

	for i, crit := range req.Criteria {
		out, err := c.compileCriterion(e, crit)
		if err != nil {
			return nil, 0, atCriterion(err, i, crit.Path)
		}
		c.logger.Debug("criterion compiled",
			"index", i,
			"path", crit.Path,
			"op", crit.Comparison.String(),
			"var", string(out),
		)
	}

	q := &queryir.Select{
		Prefixes:   req.Prefixes.Clone(),
		Distinct:   true,
		Projection: []queryir.Var{RootVar},
		Where:      where,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}

	if result := queryir.Validate(q); !result.IsWellFormed {
		return nil, 0, newError(ErrCodeMalformedQuery, "compiled query is malformed: %s",
			strings.Join(result.Problems, "; "))
	}

	return q, len(e.sink.introduced()) - 1, nil
}

// compileCriterion adds one criterion's patterns and filter to the sink and
// returns the variable its path ended at.
func (c *Compiler) compileCriterion(e *evaluator, crit ir.Criterion) (queryir.Var, error) {
	sel, err := selector.Parse(crit.Path)
	if err != nil {
		return "", err
	}
	out, err := e.evaluate(sel, RootVar, "")
	if err != nil {
		return "", err
	}
	filter, err := lowerComparison(crit, out)
	if err != nil {
		return "", err
	}
	if filter != nil {
		e.sink.add(filter)
	}
	return out, nil
}

// resolveRootType turns the configured root type into a term.
// Accepted forms: "<iri>", an absolute IRI containing "://", or a prefixed
// name whose prefix is declared.
func resolveRootType(rootType string, prefixes *ir.PrefixTable) (queryir.Term, error) {
	switch {
	case strings.HasPrefix(rootType, "<") && strings.HasSuffix(rootType, ">"):
		return queryir.IRI(rootType[1 : len(rootType)-1]), nil
	case strings.Contains(rootType, "://"):
		return queryir.IRI(rootType), nil
	}
	short, local, ok := strings.Cut(rootType, ":")
	if !ok {
		return nil, newError(ErrCodeInvalidRequest, "root type %q is neither an IRI nor a prefixed name", rootType)
	}
	ns, declared := prefixes.Lookup(short)
	if !declared {
		return nil, newError(ErrCodeInvalidRequest, "prefix %q of root type %q is not declared", short, rootType)
	}
	if !validLocalName(local) {
		return queryir.IRI(ns + local), nil
	}
	return queryir.PrefixedName{Prefix: short, Local: local}, nil
}
