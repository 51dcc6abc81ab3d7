package logic

import (
	"unicode"
	"unicode/utf8"
)

// matchRule is a single literal-lexeme-to-token-type mapping, tried in
// table order before falling back to identifier/unrecognized-rune scanning.
// Longer lexemes are listed first so multi-character ASCII digraphs like
// "<->" are not shadowed by their own prefixes ("->", "-").
type matchRule struct {
	literal string
	typ     TokenType
}

var matchTable = []matchRule{
	{"<->", TokenIff},
	{"_|_", TokenBottom},
	{"->", TokenImplies},
	{"/\\", TokenAnd},
	{"\\/", TokenOr},
	{"↔", TokenIff},
	{"⊥", TokenBottom},
	{"→", TokenImplies},
	{"∧", TokenAnd},
	{"∨", TokenOr},
	{"¬", TokenNot},
	{"~", TokenNot},
	{"&", TokenAnd},
	{"|", TokenOr},
	{"(", TokenLParen},
	{")", TokenRParen},
}

func isIdentStart(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// Lexer scans a source string left to right, emitting one Token per call to
// Next until it returns a TokenEOF token. It never fails: any rune that
// matches nothing in the recognized lexeme table becomes a single-character
// VAR token, deferring any complaint to the parser.
type Lexer struct {
	src string
	pos int
}

// NewLexer returns a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Next returns the next token in the stream, advancing position. Calling
// Next again after TokenEOF has been returned continues to return TokenEOF
// tokens at the same position.
func (lx *Lexer) Next() Token {
	lx.skipWhitespace()

	if lx.pos >= len(lx.src) {
		return Token{Type: TokenEOF, Position: len(lx.src)}
	}

	start := lx.pos
	rest := lx.src[lx.pos:]

	for _, rule := range matchTable {
		if hasPrefix(rest, rule.literal) {
			lx.pos += len(rule.literal)
			return Token{Type: rule.typ, Value: rule.literal, Position: start}
		}
	}

	r, size := utf8.DecodeRuneInString(rest)
	if isIdentStart(r) {
		end := lx.pos + size
		for end < len(lx.src) {
			r2, size2 := utf8.DecodeRuneInString(lx.src[end:])
			if !isIdentCont(r2) {
				break
			}
			end += size2
		}
		val := lx.src[lx.pos:end]
		lx.pos = end
		return Token{Type: TokenVar, Value: val, Position: start}
	}

	// Unrecognized rune: becomes a single-character VAR token. The parser
	// will reject it at the appropriate point (e.g. a bare '!' does not
	// begin any valid primary).
	lx.pos += size
	return Token{Type: TokenVar, Value: rest[:size], Position: start}
}

func (lx *Lexer) skipWhitespace() {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		lx.pos += size
	}
}

func hasPrefix(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)] == prefix
}

// Tokens scans src completely and returns the full token slice, including
// the trailing EOF token. Convenience wrapper around Lexer for callers that
// want to inspect the whole stream at once (e.g. tests).
func Tokens(src string) []Token {
	lx := NewLexer(src)
	var toks []Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Type == TokenEOF {
			return toks
		}
	}
}
