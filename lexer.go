package crontrigger

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	fieldLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Punct", Pattern: `[*/,-]`},
	})

	fieldParser = participle.MustBuild[fieldGrammar](
		participle.Lexer(fieldLexer),
		participle.UseLookahead(2),
	)
)

// fieldGrammar is the raw syntax of a single field: "*", "n", "a-b" or
// "a,b,c", optionally followed by "/step". Numbers are captured as text
// so leading zeros stay decimal.
type fieldGrammar struct {
	Wildcard bool     `parser:"(  @'*'"`
	First    *string  `parser:" | @Int"`
	Last     *string  `parser:"   ( '-' @Int"`
	Rest     []string `parser:"   | ( ',' @Int )+ )? )"`
	Step     *string  `parser:"( '/' @Int )?"`
}

// fieldToken is one whitespace-delimited field of an expression.
type fieldToken struct {
	Text string
	Span Span
}

// splitFields splits an expression on runs of whitespace, recording where
// each field sits in the input.
func splitFields(input string) []fieldToken {
	var tokens []fieldToken
	pos := 0
	for {
		for pos < len(input) && isWhitespace(input[pos]) {
			pos++
		}
		if pos >= len(input) {
			return tokens
		}
		start := pos
		for pos < len(input) && !isWhitespace(input[pos]) {
			pos++
		}
		tokens = append(tokens, fieldToken{Text: input[start:pos], Span: Span{start, pos}})
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
