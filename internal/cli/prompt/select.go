// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"

	"github.com/thoreinstein/flins/internal/errors"
)

// Sentinel errors for selection.
var (
	ErrNoItems            = errors.New("nothing to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Item is one selectable entry.
type Item struct {
	Label       string
	Description string
}

// Selector handles interactive selection and confirmation prompts.
type Selector struct {
	reader io.Reader
	writer io.Writer

	// fuzzy is used when reader is a terminal.
	fuzzy     func(items []Item) ([]int, error)
	useFuzzy  bool
	bufreader *bufio.Reader
}

// NewSelector creates a Selector on stdin and stdout. The fuzzy finder is
// used when stdin is a terminal.
func NewSelector() *Selector {
	s := NewSelectorWithIO(os.Stdin, os.Stdout)
	s.useFuzzy = IsTerminal(os.Stdin)
	return s
}

// NewSelectorWithIO creates a Selector with custom reader and writer for
// testing. It always uses the numbered prompt.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: r,
		writer: w,
		fuzzy:  fuzzyFindMulti,
	}
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	if f, ok := r.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SelectMany asks the user to pick any number of items and returns their
// indexes in ascending order.
//
// A single item is selected without prompting. In the numbered prompt the
// user enters comma-separated numbers, "all", or nothing for all.
// EOF (Ctrl+D) or an aborted fuzzy finder yields ErrSelectionCancelled.
func (s *Selector) SelectMany(title string, items []Item) ([]int, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if len(items) == 1 {
		return []int{0}, nil
	}

	if s.useFuzzy {
		idx, err := s.fuzzy(items)
		if err != nil {
			if errors.Is(err, fuzzyfinder.ErrAbort) {
				return nil, ErrSelectionCancelled
			}
			return nil, errors.Wrap(err, "interactive selection failed")
		}
		slices.Sort(idx)
		return slices.Compact(idx), nil
	}

	fmt.Fprintf(s.writer, "%s:\n", title)
	for i, it := range items {
		if it.Description != "" {
			fmt.Fprintf(s.writer, "  [%d] %s - %s\n", i+1, it.Label, it.Description)
		} else {
			fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, it.Label)
		}
	}
	fmt.Fprint(s.writer, "Select (e.g. 1,3) [all]: ")

	input, err := s.readLine()
	if err != nil {
		return nil, err
	}
	return parseSelection(input, len(items))
}

// Confirm asks a yes/no question. Only "y" or "yes" (case-insensitive)
// count as yes.
func (s *Selector) Confirm(question string) bool {
	fmt.Fprintf(s.writer, "%s [y/N]: ", question)

	response, err := s.readLine()
	if err != nil {
		return false
	}
	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}

func (s *Selector) readLine() (string, error) {
	if s.bufreader == nil {
		s.bufreader = bufio.NewReader(s.reader)
	}
	line, err := s.bufreader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}

func parseSelection(input string, n int) ([]int, error) {
	if input == "" || strings.EqualFold(input, "all") {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	var idx []int
	for _, field := range strings.Split(input, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		num, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", field)
		}
		if num < 1 || num > n {
			return nil, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", num, n)
		}
		idx = append(idx, num-1)
	}
	if len(idx) == 0 {
		return nil, errors.Wrapf(ErrInvalidSelection, "%q", input)
	}
	slices.Sort(idx)
	return slices.Compact(idx), nil
}

func fuzzyFindMulti(items []Item) ([]int, error) {
	return fuzzyfinder.FindMulti(
		items,
		func(i int) string {
			return items[i].Label
		},
		fuzzyfinder.WithHeader("Tab to select, Enter to confirm"),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return fmt.Sprintf("%s\n\n%s", items[i].Label, items[i].Description)
		}),
	)
}
