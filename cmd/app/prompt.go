package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoInput = errors.New("no symbol entered")

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// orAsk returns v, or reads one line after printing label when v is blank.
func (p *prompter) orAsk(v, label string) (string, error) {
	if strings.TrimSpace(v) != "" {
		return v, nil
	}
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read symbol: %w", err)
		}
		return "", errNoInput
	}
	s := strings.TrimSpace(p.in.Text())
	if s == "" {
		return "", errNoInput
	}
	return s, nil
}
