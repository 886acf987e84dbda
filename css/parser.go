package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser builds Stylesheet trees from CSS text.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Nested at-rules and rules are
// preserved as a tree. Only top level comments survive, the tokenizer drops
// comments inside blocks.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) (*Stylesheet, error) {
	sheet := NewStylesheet()

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	if err := p.parseBlock(parser, sheet, sheet.Root()); err != nil {
		return sheet, fmt.Errorf("unable to parse stylesheet: %w", err)
	}
	return sheet, nil
}

// parseBlock consumes grammar events appending nodes to parent until the end
// of parent's block (or end of input).
func (p *Parser) parseBlock(parser *css.Parser, sheet *Stylesheet, parent NodeID) error {
	// grouped selectors arrive as separate qualified rule events
	var selectors []string

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			if parent != sheet.Root() {
				sheet.Warnings = append(sheet.Warnings, "unterminated block at the end of input")
			}
			return nil

		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			return nil

		case css.CommentGrammar:
			sheet.Append(parent, sheet.NewComment(string(data)))

		case css.AtRuleGrammar:
			sheet.Append(parent, sheet.NewAtRule(string(data), tokensText(parser.Values(), true), false))

		case css.BeginAtRuleGrammar:
			id := sheet.NewAtRule(string(data), tokensText(parser.Values(), true), true)
			sheet.Append(parent, id)
			p.log.Debug("Parsed at-rule", zap.String("name", sheet.Name(id)), zap.String("params", sheet.Params(id)))
			if err := p.parseBlock(parser, sheet, id); err != nil {
				return err
			}

		case css.QualifiedRuleGrammar:
			if sel := selectorText(data, parser.Values()); sel != "" {
				selectors = append(selectors, sel)
			}

		case css.BeginRulesetGrammar:
			if sel := selectorText(data, parser.Values()); sel != "" {
				selectors = append(selectors, sel)
			}
			id := sheet.NewRule(strings.Join(selectors, ", "))
			selectors = nil
			sheet.Append(parent, id)
			if err := p.parseBlock(parser, sheet, id); err != nil {
				return err
			}

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if parent == sheet.Root() {
				sheet.Warnings = append(sheet.Warnings, "declaration outside of a block: "+string(data))
				p.log.Debug("Skipping top level declaration", zap.ByteString("property", data))
				continue
			}
			sheet.Append(parent, sheet.NewDeclaration(string(data), tokensText(parser.Values(), false)))

		default:
			p.log.Debug("Skipping grammar", zap.Stringer("grammar", gt), zap.ByteString("data", data))
		}
	}
}

// tokensText renders tokens collapsing whitespace runs into a single space.
// Tokenizer swallows whitespace after commas, combinators and colons in
// at-rule preludes, it is restored here so "(min-width:1px)" prints as
// "(min-width: 1px)".
func tokensText(tokens []css.Token, prelude bool) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space && t.TokenType != css.RightParenthesisToken {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(t.Data)
		switch t.TokenType {
		case css.CommaToken:
			space = true
		case css.ColonToken:
			space = prelude
		case css.DelimToken:
			// range operators like ">=" arrive as two delimiters
			space = !prelude && len(t.Data) == 1 && strings.IndexByte(">+~", t.Data[0]) >= 0
		}
	}
	return sb.String()
}

// selectorText builds single selector from grammar data and value tokens.
func selectorText(data []byte, values []css.Token) string {
	sel := strings.TrimSpace(string(data) + tokensText(values, false))
	return strings.TrimSpace(strings.Trim(sel, ",{"))
}
