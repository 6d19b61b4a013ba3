package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pathq/internal/compiler"
	"github.com/roach88/pathq/internal/selector"
)

// SelectorNode is the JSON form of a selector tree node.
type SelectorNode struct {
	Kind     string          `json:"kind"`
	Name     string          `json:"name,omitempty"`
	Test     string          `json:"test,omitempty"`
	Children []*SelectorNode `json:"children,omitempty"`
}

// ParseResult is the output of the parse command.
type ParseResult struct {
	Input      string        `json:"input"`
	Canonical  string        `json:"canonical"`
	Properties int           `json:"properties"`
	Tree       *SelectorNode `json:"tree"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <path-expression>",
		Short: "Print the selector tree of a path expression",
		Long: `Parse a path expression and print its selector tree.

Examples:
  pathq parse 'foaf:knows/foaf:name'
  pathq parse '(a | b)[@en]' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runParse(opts *RootOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sel, err := selector.Parse(input)
	if err != nil {
		var details any
		var pe *selector.ParseError
		if errors.As(err, &pe) {
			details = map[string]any{"input": pe.Input, "pos": pe.Pos}
		}
		_ = formatter.Error(string(compiler.ErrCodeParse), err.Error(), details)
		return NewExitError(ExitFailure, err.Error())
	}

	result := ParseResult{
		Input:      input,
		Canonical:  sel.String(),
		Properties: selector.CountProperties(sel),
		Tree:       selectorTree(sel),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s\n\n", result.Canonical)
	printTree(formatter.Writer, result.Tree, 0)
	return nil
}

// selectorTree converts a selector to its JSON form.
func selectorTree(s selector.Selector) *SelectorNode {
	switch n := s.(type) {
	case *selector.Property:
		return &SelectorNode{Kind: "property", Name: n.Name.String()}
	case *selector.Path:
		return &SelectorNode{Kind: "path", Children: []*SelectorNode{selectorTree(n.Left), selectorTree(n.Right)}}
	case *selector.Grouped:
		return &SelectorNode{Kind: "group", Children: []*SelectorNode{selectorTree(n.Inner)}}
	case *selector.Union:
		return &SelectorNode{Kind: "union", Children: []*SelectorNode{selectorTree(n.Left), selectorTree(n.Right)}}
	case *selector.Testing:
		return &SelectorNode{Kind: "test", Test: n.Test.String(), Children: []*SelectorNode{selectorTree(n.Inner)}}
	default:
		return &SelectorNode{Kind: fmt.Sprintf("%T", s)}
	}
}

// printTree writes one node per line, children indented two spaces.
func printTree(w io.Writer, n *SelectorNode, depth int) {
	line := n.Kind
	switch {
	case n.Name != "":
		line += " " + n.Name
	case n.Test != "":
		line += " [" + n.Test + "]"
	}
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), line)
	for _, child := range n.Children {
		printTree(w, child, depth+1)
	}
}
