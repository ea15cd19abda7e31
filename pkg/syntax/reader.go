package syntax

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrIncomplete reports that the input ended in the middle of a form. An
// interactive host treats it as a request for continuation lines rather
// than a failure.
var ErrIncomplete = errors.New("incomplete input")

// ParseError is a reader failure with the line it was detected on.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Message)
}

// Reader reads syntax-tree nodes from a stream of source text.
type Reader struct {
	scanner *bufio.Scanner
	tokens  []string
	index   int
	lineNo  int
}

// NewReader constructs a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Read returns the next top-level form. It returns io.EOF once the input is
// exhausted and ErrIncomplete when the input ends inside a form.
func (rr *Reader) Read() (Node, error) {
	tok, err := rr.nextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return rr.parseExpression(tok)
}

// ReadAll reads every top-level form in src, in order.
func ReadAll(src string) ([]Node, error) {
	rr := NewReader(strings.NewReader(src))
	var forms []Node
	for {
		form, err := rr.Read()
		if errors.Is(err, io.EOF) {
			return forms, nil
		}
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
}

func (rr *Reader) errorf(format string, args ...any) *ParseError {
	return &ParseError{Line: rr.lineNo, Message: fmt.Sprintf(format, args...)}
}

func (rr *Reader) parseExpression(tok string) (Node, error) {
	switch tok {
	case "(":
		return rr.parseListBody()
	case ")":
		return nil, rr.errorf("unexpected \")\"")
	case "'":
		next, err := rr.nextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrIncomplete
			}
			return nil, err
		}
		quoted, err := rr.parseExpression(next)
		if err != nil {
			return nil, err
		}
		return NewList(Symbol{Name: "quote"}, quoted), nil
	default:
		return rr.parseAtom(tok)
	}
}

func (rr *Reader) parseListBody() (Node, error) {
	items := []Node{}
	for {
		tok, err := rr.nextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrIncomplete
			}
			return nil, err
		}
		if tok == ")" {
			return &List{Items: items}, nil
		}
		item, err := rr.parseExpression(tok)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

var (
	integerPattern  = regexp.MustCompile(`^[+-]?[0-9]+$`)
	rationalPattern = regexp.MustCompile(`^([+-]?[0-9]+)/([0-9]+)$`)
)

func (rr *Reader) parseAtom(tok string) (Node, error) {
	if tok[0] == '"' {
		return rr.parseString(tok)
	}
	if integerPattern.MatchString(tok) {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, rr.errorf("integer literal out of range: %s", tok)
		}
		return Number{Value: n}, nil
	}
	if m := rationalPattern.FindStringSubmatch(tok); m != nil {
		num, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, rr.errorf("rational literal out of range: %s", tok)
		}
		den, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, rr.errorf("rational literal out of range: %s", tok)
		}
		if den == 0 {
			return nil, rr.errorf("rational literal with zero denominator: %s", tok)
		}
		return Rational{Numerator: num, Denominator: den}, nil
	}
	if tok == "#t" {
		return Bool{Value: true}, nil
	}
	if tok == "#f" {
		return Bool{Value: false}, nil
	}
	if err := checkIdentifier(tok); err != nil {
		return nil, rr.errorf("%s", err)
	}
	return Symbol{Name: tok}, nil
}

func (rr *Reader) parseString(tok string) (Node, error) {
	n := len(tok) - 1
	if n < 1 || tok[n] != '"' {
		return nil, rr.errorf("unterminated string: %s", tok)
	}
	body := escapePattern.ReplaceAllStringFunc(tok[1:n], func(seq string) string {
		if r, ok := escapes[seq]; ok {
			return r
		}
		return seq
	})
	return String{Value: body}, nil
}

// checkIdentifier enforces the naming contract: the first character may not
// be a digit or one of ". @", and no character may be one of "# ' \" `".
func checkIdentifier(tok string) error {
	first := tok[0]
	if first >= '0' && first <= '9' {
		return fmt.Errorf("malformed number literal: %s", tok)
	}
	if first == '.' || first == '@' {
		return fmt.Errorf("invalid identifier: %s", tok)
	}
	if strings.ContainsAny(tok, "#'\"`") {
		return fmt.Errorf("invalid identifier: %s", tok)
	}
	return nil
}

// nextToken yields the next raw token, scanning further lines as needed.
func (rr *Reader) nextToken() (string, error) {
	for rr.index >= len(rr.tokens) {
		if !rr.scanner.Scan() {
			if err := rr.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		line := rr.scanner.Text()
		rr.lineNo++
		matches := tokenPattern.FindAllStringSubmatch(line, -1)
		tokens := make([]string, 0, len(matches))
		for _, m := range matches {
			if m[1] != "" {
				tokens = append(tokens, m[1])
			}
		}
		rr.tokens = tokens
		rr.index = 0
	}
	tok := rr.tokens[rr.index]
	rr.index++
	return tok, nil
}

// tokenPattern splits a line into tokens: whitespace and ;-comments are
// dropped; strings, atoms, and single punctuation characters are kept.
var tokenPattern = regexp.MustCompile(`\s+|;.*$|("(\\.?|.)*?"|[^()'"; \t` + "`" + `]+|.)`)

// escapePattern matches one escape sequence inside a string literal.
var escapePattern = regexp.MustCompile(`\\(.)`)

var escapes = map[string]string{
	`\\`: `\`,
	`\"`: `"`,
	`\n`: "\n", `\r`: "\r", `\f`: "\f", `\b`: "\b", `\t`: "\t", `\v`: "\v",
}
