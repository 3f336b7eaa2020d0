package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".pinectl_history"
	historySize     = 500
)

// lineEditor uses readline on a terminal and a plain scanner otherwise.
type lineEditor struct {
	rl      *readline.Instance
	scanner *bufio.Scanner
	out     io.Writer
}

func newLineEditor(in io.Reader, out io.Writer) *lineEditor {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) || os.Getenv("INSIDE_EMACS") != "" {
		return &lineEditor{scanner: bufio.NewScanner(in), out: out}
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline unavailable (%v), using basic input\n", err)
		return &lineEditor{scanner: bufio.NewScanner(in), out: out}
	}
	return &lineEditor{rl: rl, out: out}
}

// GetLine returns io.EOF on Ctrl-D, Ctrl-C, or end of piped input.
func (le *lineEditor) GetLine(prompt string) (string, error) {
	if le.rl != nil {
		le.rl.SetPrompt(prompt)
		line, err := le.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return "", io.EOF
			}
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			le.rl.SaveToHistory(trimmed)
		}
		return line, nil
	}

	fmt.Fprint(le.out, prompt)
	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

func (le *lineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, historyFileName)
}
