package selector

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF      TokenType = iota
	TokenName               // foaf:name, name, is-a, en-US
	TokenIRI                // <http://...>, Value holds the text between brackets
	TokenString             // "text", Value holds the unescaped text
	TokenSlash              // /
	TokenPipe               // |
	TokenLParen             // (
	TokenRParen             // )
	TokenLBracket           // [
	TokenRBracket           // ]
	TokenAt                 // @
	TokenComma              // ,
	TokenStar               // *
	TokenError              // error token, Value holds the message
)

var tokenNames = map[TokenType]string{
	TokenEOF:      "end of input",
	TokenName:     "name",
	TokenIRI:      "IRI",
	TokenString:   "string",
	TokenSlash:    "'/'",
	TokenPipe:     "'|'",
	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
	TokenAt:       "'@'",
	TokenComma:    "','",
	TokenStar:     "'*'",
	TokenError:    "error",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// Token represents a lexer token.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

var punctuation = map[byte]TokenType{
	'/': TokenSlash,
	'|': TokenPipe,
	'(': TokenLParen,
	')': TokenRParen,
	'[': TokenLBracket,
	']': TokenRBracket,
	'@': TokenAt,
	',': TokenComma,
	'*': TokenStar,
}

// Lexer tokenizes a path expression.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	if tt, ok := punctuation[ch]; ok {
		l.pos++
		return Token{Type: tt, Value: string(ch), Pos: start}
	}

	switch {
	case ch == '<':
		return l.scanIRI()
	case ch == '"' || ch == '\'':
		return l.scanString(ch)
	case ch == ':' || isNameChar(l.peekRune()):
		return l.scanName()
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return Token{Type: TokenError, Value: "unexpected character " + quoteRune(r), Pos: start}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *Lexer) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// scanName reads a prefixed or bare name. At most one ':' is allowed and it
// must be followed by a local part.
func (l *Lexer) scanName() Token {
	start := l.pos
	colons := 0
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == ':' {
			colons++
			if colons > 1 {
				break
			}
			l.pos += size
			continue
		}
		if !isNameChar(r) {
			break
		}
		l.pos += size
	}
	value := l.input[start:l.pos]
	if strings.HasSuffix(value, ":") {
		return Token{Type: TokenError, Value: "missing local name after " + value, Pos: start}
	}
	return Token{Type: TokenName, Value: value, Pos: start}
}

func (l *Lexer) scanIRI() Token {
	start := l.pos
	l.pos++ // <
	end := strings.IndexByte(l.input[l.pos:], '>')
	if end < 0 {
		l.pos = len(l.input)
		return Token{Type: TokenError, Value: "unterminated IRI", Pos: start}
	}
	iri := l.input[l.pos : l.pos+end]
	l.pos += end + 1
	if iri == "" || strings.ContainsAny(iri, " \t\n\"{}|^`\\<") {
		return Token{Type: TokenError, Value: "invalid IRI <" + iri + ">", Pos: start}
	}
	return Token{Type: TokenIRI, Value: iri, Pos: start}
}

func (l *Lexer) scanString(quote byte) Token {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == quote:
			l.pos++
			return Token{Type: TokenString, Value: sb.String(), Pos: start}
		case ch == '\\' && l.pos+1 < len(l.input):
			sb.WriteByte(l.input[l.pos+1])
			l.pos += 2
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
	return Token{Type: TokenError, Value: "unterminated string", Pos: start}
}

func isNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'
}

func quoteRune(r rune) string {
	if r == utf8.RuneError {
		return "(invalid UTF-8)"
	}
	return "'" + string(r) + "'"
}
