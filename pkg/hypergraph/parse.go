package hypergraph

import (
	"bufio"
	"fmt"
	"io"

	"github.com/matzehuels/htdecomp/pkg/errors"
)

// ParseHyperBench reads the HyperBench text format: a comma-separated list
// of atoms name(v1,v2,...) terminated by a '.', with '%' line comments.
// Variables are numbered in order of first appearance.
func ParseHyperBench(r io.Reader) (*Hypergraph, error) {
	p := &hbParser{r: bufio.NewReader(r), line: 1}
	vars, atoms, err := p.parse()
	if err != nil {
		return nil, err
	}
	h, err := Build(vars, atoms)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build hypergraph")
	}
	return h, nil
}

type hbParser struct {
	r         *bufio.Reader
	line, col int
	peeked    rune
	hasPeek   bool
}

func (p *hbParser) parse() ([]string, []Atom, error) {
	var (
		vars     []string
		atoms    []Atom
		varIdx   = make(map[string]int)
		atomSeen = make(map[string]bool)
	)

	for {
		name, err := p.ident("atom name")
		if err != nil {
			return nil, nil, err
		}
		if atomSeen[name] {
			return nil, nil, p.errorf("atom %q occurs twice", name)
		}
		atomSeen[name] = true
		if err := p.expect('('); err != nil {
			return nil, nil, err
		}

		atom := Atom{Name: name}
		for {
			v, err := p.ident("variable name")
			if err != nil {
				return nil, nil, err
			}
			idx, ok := varIdx[v]
			if !ok {
				idx = len(vars)
				varIdx[v] = idx
				vars = append(vars, v)
			}
			atom.Vars = append(atom.Vars, idx)

			c, err := p.next()
			if err != nil {
				return nil, nil, err
			}
			if c == ')' {
				break
			}
			if c != ',' {
				return nil, nil, p.errorf("expected ',' or ')', got %q", c)
			}
		}
		atoms = append(atoms, atom)

		c, err := p.next()
		if err != nil {
			return nil, nil, err
		}
		switch c {
		case ',':
			continue
		case '.':
			if err := p.trailing(); err != nil {
				return nil, nil, err
			}
			return vars, atoms, nil
		default:
			return nil, nil, p.errorf("expected ',' or '.', got %q", c)
		}
	}
}

// read returns the next raw rune, tracking the position.
func (p *hbParser) read() (rune, error) {
	if p.hasPeek {
		p.hasPeek = false
		return p.peeked, nil
	}
	c, _, err := p.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if c == '\n' {
		p.line++
		p.col = 0
	} else {
		p.col++
	}
	return c, nil
}

func (p *hbParser) unread(c rune) {
	p.peeked = c
	p.hasPeek = true
}

// next returns the next rune that is not whitespace or part of a comment.
func (p *hbParser) next() (rune, error) {
	for {
		c, err := p.read()
		if err == io.EOF {
			return 0, p.errorf("unexpected end of input")
		}
		if err != nil {
			return 0, err
		}
		switch {
		case c == '%':
			for c != '\n' {
				if c, err = p.read(); err != nil {
					return 0, p.errorf("unexpected end of input")
				}
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			return c, nil
		}
	}
}

func (p *hbParser) expect(want rune) error {
	c, err := p.next()
	if err != nil {
		return err
	}
	if c != want {
		return p.errorf("expected %q, got %q", want, c)
	}
	return nil
}

func (p *hbParser) ident(what string) (string, error) {
	c, err := p.next()
	if err != nil {
		return "", err
	}
	if !isIdentRune(c) {
		return "", p.errorf("illegal or missing %s at %q", what, c)
	}
	buf := []rune{c}
	for {
		c, err := p.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if !isIdentRune(c) {
			p.unread(c)
			break
		}
		buf = append(buf, c)
	}
	return string(buf), nil
}

// trailing accepts only whitespace and comments after the final '.'.
func (p *hbParser) trailing() error {
	c, err := p.next()
	if err == nil {
		return p.errorf("unexpected %q after end of atom list", c)
	}
	if errors.Is(err, errors.ErrCodeInvalidFormat) {
		return nil
	}
	return err
}

func (p *hbParser) errorf(format string, args ...any) error {
	return &errors.SyntaxError{Line: p.line, Column: p.col, Message: fmt.Sprintf(format, args...)}
}

func isIdentRune(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == ':' || c == '-' || c == '\''
}
