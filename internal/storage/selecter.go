package storage

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pixil98/go-lantern/internal"
)

const (
	defaultSelectorRowLength = 80
	defaultSelectorRowCount  = 5
	maxSelectionTries        = 5
)

type validatingSelectable interface {
	ValidatingSpec
	Selector() string
}

// SelectableStorer presents the assets of a store as a numbered menu.
type SelectableStorer[T validatingSelectable] struct {
	Storer[T]

	options []option[T]
	output  []string
}

type option[T validatingSelectable] struct {
	id  string
	val T
}

func NewSelectableStorer[T validatingSelectable](st Storer[T]) *SelectableStorer[T] {
	s := &SelectableStorer[T]{Storer: st}

	for id, val := range s.GetAll() {
		s.options = append(s.options, option[T]{id: id, val: val})
	}
	slices.SortFunc(s.options, func(a, b option[T]) int {
		if c := strings.Compare(a.val.Selector(), b.val.Selector()); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	s.build()

	return s
}

// Len returns the number of options.
func (s *SelectableStorer[T]) Len() int {
	return len(s.options)
}

func (s *SelectableStorer[T]) build() {
	// Calculate column width
	colWidth := 1
	for _, v := range s.options {
		l := len(v.val.Selector()) + 7 // Plus 7 for number and spacing (nn. <val>  )
		if l > colWidth {
			colWidth = l
		}
	}

	// Fill columns first, left to right, adding rows when the options do not
	// fit in the default number of rows.
	numCols := max(1, defaultSelectorRowLength/colWidth)
	numRows := max(defaultSelectorRowCount, (len(s.options)+numCols-1)/numCols)

	rows := make([]string, numRows)
	for i, v := range s.options {
		rows[i%numRows] += fmt.Sprintf("%2d. %-*s  ", i+1, colWidth-5, v.val.Selector())
	}

	s.output = rows
}

func (s *SelectableStorer[T]) Prompt(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	_, err := fmt.Fprintf(w, "%s\n", prompt)
	if err != nil {
		return "", err
	}

	for _, str := range s.output {
		if len(str) > 0 {
			_, err = fmt.Fprintf(w, "%s\n", strings.TrimRight(str, " "))
			if err != nil {
				return "", err
			}
		}
	}

	selection, err := internal.Prompt(r, w, "Make your selection: ", internal.WithMaxTries(maxSelectionTries), internal.WithValidator(
		func(str string) (bool, string) {
			i, err := strconv.Atoi(strings.TrimSpace(str))
			if err != nil || s.Select(i) == "" {
				return false, "Invalid selection!\n"
			}
			return true, ""
		},
	))
	if err != nil {
		return "", err
	}

	i, err := strconv.Atoi(strings.TrimSpace(selection))
	if err != nil {
		return "", err
	}

	return s.Select(i), nil
}

// Select returns the id of the 1-based option i, or "" if there is none.
func (s *SelectableStorer[T]) Select(i int) string {
	if i < 1 || i > len(s.options) {
		return ""
	}
	return s.options[i-1].id
}
