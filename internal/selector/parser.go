package selector

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Parser parses path expressions into selector trees.
type Parser struct {
	input string
	lexer *Lexer
	curr  Token
	peek  Token
}

// Parse parses a path expression.
// Returns a *ParseError for any syntax problem, including trailing input.
func Parse(input string) (Selector, error) {
	p := &Parser{input: input, lexer: NewLexer(input)}
	p.advance()
	p.advance()

	if p.curr.Type == TokenEOF {
		return nil, p.errorf(p.curr, "empty path expression")
	}

	sel, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != TokenEOF {
		return nil, p.unexpected("end of input")
	}
	return sel, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or with constant expressions.
func MustParse(input string) Selector {
	sel, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return sel
}

func (p *Parser) advance() {
	p.curr = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) expect(t TokenType) error {
	if p.curr.Type != t {
		return p.unexpected(t.String())
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(tok Token, format string, args ...any) *ParseError {
	return &ParseError{Input: p.input, Pos: tok.Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) unexpected(want string) *ParseError {
	if p.curr.Type == TokenError {
		return p.errorf(p.curr, "%s", p.curr.Value)
	}
	got := p.curr.Type.String()
	if p.curr.Type != TokenEOF && p.curr.Value != "" {
		got = fmt.Sprintf("%s %q", got, p.curr.Value)
	}
	return p.errorf(p.curr, "expected %s, got %s", want, got)
}

// parseUnion parses path ( "|" path )*.
func (p *Parser) parseUnion() (Selector, error) {
	left, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == TokenPipe {
		p.advance()
		right, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		left = &Union{Left: left, Right: right}
	}
	return left, nil
}

// parsePath parses tested ( "/" tested )*.
func (p *Parser) parsePath() (Selector, error) {
	left, err := p.parseTested()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == TokenSlash {
		p.advance()
		right, err := p.parseTested()
		if err != nil {
			return nil, err
		}
		left = &Path{Left: left, Right: right}
	}
	return left, nil
}

// parseTested parses primary ( "[" test "]" )*.
func (p *Parser) parseTested() (Selector, error) {
	sel, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == TokenLBracket {
		p.advance()
		test, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}
		sel = &Testing{Inner: sel, Test: test}
	}
	return sel, nil
}

func (p *Parser) parsePrimary() (Selector, error) {
	if p.curr.Type == TokenLParen {
		p.advance()
		inner, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return &Grouped{Inner: inner}, nil
	}

	name, err := p.parseName("property")
	if err != nil {
		return nil, err
	}
	return &Property{Name: name}, nil
}

func (p *Parser) parseName(what string) (Name, error) {
	tok := p.curr
	switch tok.Type {
	case TokenStar:
		p.advance()
		return Name{Wildcard: true}, nil
	case TokenIRI:
		p.advance()
		return Name{IRI: tok.Value}, nil
	case TokenName:
		p.advance()
		return splitName(tok.Value), nil
	default:
		return Name{}, p.unexpected(what)
	}
}

func splitName(s string) Name {
	if prefix, local, ok := strings.Cut(s, ":"); ok {
		return Name{Prefix: prefix, Local: local}
	}
	return Name{Local: s}
}

// parseTest parses the body of a "[...]" node test.
func (p *Parser) parseTest() (NodeTest, error) {
	switch {
	case p.curr.Type == TokenAt:
		p.advance()
		return p.parseLanguageTag()

	case p.curr.Type == TokenName && p.curr.Value == "is-a":
		p.advance()
		typ, err := p.parseName("type name after is-a")
		if err != nil {
			return nil, err
		}
		if typ.Wildcard {
			return nil, p.errorf(p.curr, "is-a requires a concrete type")
		}
		return &IsA{Type: typ}, nil

	case p.curr.Type == TokenName || p.curr.Type == TokenIRI:
		name, err := p.parseName("test function")
		if err != nil {
			return nil, err
		}
		return p.parseFunctionArgs(name)

	default:
		return nil, p.unexpected("node test")
	}
}

func (p *Parser) parseLanguageTag() (NodeTest, error) {
	tok := p.curr
	if tok.Type != TokenName {
		return nil, p.unexpected("language tag")
	}
	// Parse only validates. The tag is kept as written because data tagged
	// with a deprecated code (iw, in, i-klingon) must still match it.
	if _, err := language.Parse(tok.Value); err != nil {
		return nil, p.errorf(tok, "invalid language tag %q: %v", tok.Value, err)
	}
	p.advance()
	return &LanguageTag{Tag: tok.Value}, nil
}

func (p *Parser) parseFunctionArgs(name Name) (NodeTest, error) {
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	fn := &GenericFunction{Name: name}
	if p.curr.Type == TokenRParen {
		p.advance()
		return fn, nil
	}
	for {
		switch p.curr.Type {
		case TokenString, TokenName:
			fn.Args = append(fn.Args, p.curr.Value)
		case TokenIRI:
			fn.Args = append(fn.Args, "<"+p.curr.Value+">")
		default:
			return nil, p.unexpected("function argument")
		}
		p.advance()
		if p.curr.Type != TokenComma {
			break
		}
		p.advance()
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return fn, nil
}
