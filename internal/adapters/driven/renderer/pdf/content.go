package pdf

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/custodia-labs/pdfboard/internal/adapters/driven/renderer"
)

// kerningSpace is the TJ displacement (thousandths of an em) beyond which a
// gap is read as a word break.
const kerningSpace = -200

type operandKind int

const (
	opNumber operandKind = iota
	opString
	opName
	opArray
)

type operand struct {
	kind operandKind
	num  float64
	str  string
	arr  []operand
}

// ExtractRuns returns the text shown by a page content stream, one run per
// text line. Only simple fonts are decoded; text in CID fonts comes out as
// whatever printable bytes it happens to contain.
func ExtractRuns(content []byte) renderer.Page {
	e := &extractor{lex: lexer{data: content}}
	e.run()
	return e.runs
}

type extractor struct {
	lex      lexer
	operands []operand
	arrays   [][]operand
	line     strings.Builder
	runs     renderer.Page
}

func (e *extractor) run() {
	for {
		tok, ok := e.lex.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokString:
			e.push(operand{kind: opString, str: tok.text})
		case tokNumber:
			n, _ := strconv.ParseFloat(tok.text, 64)
			e.push(operand{kind: opNumber, num: n})
		case tokName:
			e.push(operand{kind: opName, str: tok.text})
		case tokArrayStart:
			e.arrays = append(e.arrays, nil)
		case tokArrayEnd:
			if len(e.arrays) == 0 {
				continue
			}
			arr := e.arrays[len(e.arrays)-1]
			e.arrays = e.arrays[:len(e.arrays)-1]
			e.push(operand{kind: opArray, arr: arr})
		case tokOperator:
			e.operator(tok.text)
			e.operands = e.operands[:0]
			e.arrays = e.arrays[:0]
		}
	}
	e.breakLine()
}

func (e *extractor) push(op operand) {
	if n := len(e.arrays); n > 0 {
		e.arrays[n-1] = append(e.arrays[n-1], op)
		return
	}
	e.operands = append(e.operands, op)
}

func (e *extractor) operator(name string) {
	switch name {
	case "Tj":
		e.show(e.lastString())
	case "'", `"`:
		e.breakLine()
		e.show(e.lastString())
	case "TJ":
		e.showArray()
	case "T*", "Tm", "ET":
		e.breakLine()
	case "Td", "TD":
		if ty := e.number(len(e.operands) - 1); ty != 0 {
			e.breakLine()
		} else if e.line.Len() > 0 {
			e.line.WriteByte(' ')
		}
	case "ID":
		e.lex.skipInlineImage()
	}
}

func (e *extractor) show(s string) {
	e.line.WriteString(s)
}

func (e *extractor) showArray() {
	if len(e.operands) == 0 {
		return
	}
	last := e.operands[len(e.operands)-1]
	if last.kind != opArray {
		return
	}
	for _, item := range last.arr {
		switch item.kind {
		case opString:
			e.line.WriteString(item.str)
		case opNumber:
			if item.num < kerningSpace {
				e.line.WriteByte(' ')
			}
		}
	}
}

func (e *extractor) lastString() string {
	for i := len(e.operands) - 1; i >= 0; i-- {
		if e.operands[i].kind == opString {
			return e.operands[i].str
		}
	}
	return ""
}

func (e *extractor) number(i int) float64 {
	if i < 0 || i >= len(e.operands) || e.operands[i].kind != opNumber {
		return 0
	}
	return e.operands[i].num
}

func (e *extractor) breakLine() {
	line := strings.Join(strings.Fields(e.line.String()), " ")
	e.line.Reset()
	if line != "" {
		e.runs = append(e.runs, line)
	}
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokName
	tokArrayStart
	tokArrayEnd
	tokDict
	tokOperator
)

type token struct {
	kind tokenKind
	text string
}

type lexer struct {
	data []byte
	pos  int
}

func isDelimiter(c byte) bool {
	return bytes.IndexByte([]byte("()<>[]{}/%"), c) >= 0
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (l *lexer) next() (token, bool) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			l.pos++
			return token{kind: tokString, text: decodeText(l.literal())}, true
		case c == '<':
			if l.peek(1) == '<' {
				l.pos += 2
				return token{kind: tokDict}, true
			}
			l.pos++
			return token{kind: tokString, text: decodeText(l.hex())}, true
		case c == '>':
			l.pos++
			if l.peek(0) == '>' {
				l.pos++
			}
			return token{kind: tokDict}, true
		case c == '[':
			l.pos++
			return token{kind: tokArrayStart}, true
		case c == ']':
			l.pos++
			return token{kind: tokArrayEnd}, true
		case c == '/':
			l.pos++
			return token{kind: tokName, text: l.regular()}, true
		case c == '{' || c == '}' || c == ')':
			l.pos++
		default:
			word := l.regular()
			if isNumber(word) {
				return token{kind: tokNumber, text: word}, true
			}
			return token{kind: tokOperator, text: word}, true
		}
	}
	return token{}, false
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.data) {
		return l.data[l.pos+offset]
	}
	return 0
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) literal() []byte {
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		case '\\':
			out = l.escape(out)
		default:
			out = append(out, c)
		}
	}
	return out
}

func (l *lexer) escape(out []byte) []byte {
	if l.pos >= len(l.data) {
		return out
	}
	c := l.data[l.pos]
	l.pos++
	switch c {
	case 'n':
		return append(out, '\n')
	case 'r':
		return append(out, '\r')
	case 't':
		return append(out, '\t')
	case 'b':
		return append(out, '\b')
	case 'f':
		return append(out, '\f')
	case '\r':
		if l.peek(0) == '\n' {
			l.pos++
		}
		return out
	case '\n':
		return out
	}
	if c >= '0' && c <= '7' {
		v := int(c - '0')
		for i := 0; i < 2 && l.pos < len(l.data); i++ {
			d := l.data[l.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			l.pos++
		}
		return append(out, byte(v))
	}
	return append(out, c)
}

func (l *lexer) hex() []byte {
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

// skipInlineImage moves past inline image data up to the EI operator.
func (l *lexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if isSpace(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.data) || isSpace(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// decodeText turns a PDF string into text: UTF-16BE when it carries a byte
// order mark, otherwise one byte per character. Control characters are dropped.
func decodeText(b []byte) string {
	var runes []rune
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, len(b)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		runes = utf16.Decode(units)
	} else {
		runes = make([]rune, len(b))
		for i, c := range b {
			runes[i] = rune(c)
		}
	}

	var sb strings.Builder
	for _, r := range runes {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			sb.WriteByte(' ')
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
