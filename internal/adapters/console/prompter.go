package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type readResult struct {
	line string
	err  error
}

// Prompter reads operator answers one line at a time.
//
// Lines are read by a background goroutine so that Ask can return as soon
// as its context is cancelled, even while the operator has not pressed Enter.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan readResult
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Ask returns io.EOF once input is exhausted with nothing left to read,
// and ctx.Err() as soon as ctx is done.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(p.out, color.New(color.FgCyan).Sprint(question))
	p.once.Do(p.startReader)

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			fmt.Fprintln(p.out)
			return "", io.EOF
		}
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			if errors.Is(res.err, io.EOF) {
				fmt.Fprintln(p.out)
				return "", io.EOF
			}
			return "", fmt.Errorf("read answer: %w", res.err)
		}
		return strings.TrimSpace(res.line), nil
	}
}

// startReader feeds lines to Ask until the input ends or fails. A read left
// pending by a cancelled Ask is delivered to the next Ask.
func (p *Prompter) startReader() {
	p.lines = make(chan readResult)
	go func() {
		defer close(p.lines)
		for {
			line, err := p.in.ReadString('\n')
			p.lines <- readResult{line: line, err: err}
			if err != nil {
				return
			}
		}
	}()
}
