package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads operator input. Secrets are read without echo when stdin
// is a terminal.
type prompter struct {
	in     *bufio.Reader
	fd     int
	isTTY  bool
	out    io.Writer
	secret func(fd int) ([]byte, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, fd: -1, secret: term.ReadPassword}
	if f, ok := in.(*os.File); ok {
		p.fd = int(f.Fd())
		p.isTTY = term.IsTerminal(p.fd)
	}
	return p
}

// line prints label and reads one line. A nil result means the operator
// closed the input (EOF) without typing anything.
func (p *prompter) line(label string) (*string, error) {
	fmt.Fprint(p.out, label+" ")
	s, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if errors.Is(err, io.EOF) && s == "" {
		fmt.Fprintln(p.out)
		return nil, nil
	}
	s = strings.TrimRight(s, "\r\n")
	return &s, nil
}

// password reads a secret, hiding it on a terminal.
func (p *prompter) password(label string) (string, error) {
	if !p.isTTY {
		v, err := p.line(label)
		if err != nil {
			return "", err
		}
		if v == nil {
			return "", io.ErrUnexpectedEOF
		}
		return *v, nil
	}
	fmt.Fprint(p.out, label+" ")
	b, err := p.secret(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// required reads a non-cancelled line.
func (p *prompter) required(label string) (string, error) {
	v, err := p.line(label)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(*v), nil
}
