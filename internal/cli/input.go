package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/modcatalog/internal/spreadsheet"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// stdoutIsTerminal reports whether progress bars can be drawn.
func stdoutIsTerminal() bool {
	return isTerminal(int(os.Stdout.Fd()))
}

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetTextWithDefault is GetSimpleText with a current value shown in brackets.
// An empty answer keeps current; a single "-" clears it.
func GetTextWithDefault(reader *bufio.Reader, prompt, current string, w io.Writer) (string, error) {
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, shorten(current, 60))
	}
	s, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	switch s {
	case "":
		return current, nil
	case "-":
		return "", nil
	}
	return s, nil
}

// GetPrice keeps asking until the answer parses as a positive price. An empty
// answer returns current when current is positive.
func GetPrice(reader *bufio.Reader, prompt string, current float64, w io.Writer) (float64, error) {
	if current > 0 {
		prompt = fmt.Sprintf("%s [%v]", prompt, current)
	}
	for {
		s, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return 0, err
		}
		if s == "" && current > 0 {
			return current, nil
		}
		if p, ok := spreadsheet.ParsePrice(s); ok {
			return p, nil
		}
		fmt.Fprintln(w, "Price must be a number greater than zero.")
	}
}

// Confirm asks a yes/no question; only "y" or "yes" count as yes.
func Confirm(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	s, err := GetSimpleText(reader, prompt+" (y/N)", w)
	if err != nil {
		return false, err
	}
	s = strings.ToLower(s)
	return s == "y" || s == "yes", nil
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
