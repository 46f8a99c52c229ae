// Package format renders a solved pattern grid as RLE, CSV, or a compact
// Unicode-block preview.
package format

import (
	"fmt"
	"strings"

	"github.com/totalistic/lifesearch/internal/grid"
	"github.com/totalistic/lifesearch/internal/rule"
)

// Options controls what a formatter includes in its output.
type Options struct {
	Rule           rule.Table
	Determined     bool
	ShowBackground bool
	Background     [][][]string
}

// ErrInvalidCell is returned when a formatter encounters a cell that is
// neither "0" nor "1" (the grid must already be fully resolved).
type ErrInvalidCell struct {
	Cell string
}

func (e *ErrInvalidCell) Error() string {
	return fmt.Sprintf("format: cell %q is neither \"0\" nor \"1\"", e.Cell)
}

// RLE renders a resolved grid ([t][y][x] of "0"/"1" strings) in
// Golly-compatible run-length-encoded form, matching
// formatting.py:make_rle. A minimal RLE is produced: "b"/"o" per cell,
// "$" ending each row, "!" ending the first generation; later generations
// are appended verbatim under an "Other generations:" heading unless
// opts.Determined is set.
func RLE(pattern [][][]string, opts Options) (string, error) {
	if len(pattern) == 0 {
		return "", nil
	}
	width := len(pattern[0][0])
	height := len(pattern[0])

	rendered, err := renderLiveDead(pattern)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "x = %d, y = %d", width, height)
	if opts.Rule != nil {
		fmt.Fprintf(&b, ", rule = %s", opts.Rule.String())
	}
	b.WriteString("\n")

	for _, row := range rendered[0] {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("$\n")
	}
	b.WriteString("!\n")

	if !opts.Determined && len(rendered) > 1 {
		b.WriteString("\nOther generations:\n")
		for g, generation := range rendered[1:] {
			if g > 0 {
				b.WriteString("\n")
			}
			for _, row := range generation {
				b.WriteString(strings.Join(row, ""))
				b.WriteString("$\n")
			}
		}
	}

	return b.String(), nil
}

func renderLiveDead(pattern [][][]string) ([][][]string, error) {
	out := make([][][]string, len(pattern))
	for t, generation := range pattern {
		out[t] = make([][]string, len(generation))
		for y, row := range generation {
			out[t][y] = make([]string, len(row))
			for x, cell := range row {
				switch cell {
				case "0":
					out[t][y][x] = "b"
				case "1":
					out[t][y][x] = "o"
				default:
					return nil, &ErrInvalidCell{cell}
				}
			}
		}
	}
	return out, nil
}

// CSV renders a resolved grid as a column-aligned CSV table, matching
// formatting.py:make_csv. ignore marks cells whose trailing "'" should be
// reproduced in the output.
func CSV(pattern [][][]string, ignore [][][]bool, opts Options) string {
	cells := make([][][]string, len(pattern))
	for t, generation := range pattern {
		cells[t] = make([][]string, len(generation))
		for y, row := range generation {
			cells[t][y] = make([]string, len(row))
			for x, cell := range row {
				if ignore != nil && t < len(ignore) && y < len(ignore[t]) && x < len(ignore[t][y]) && ignore[t][y][x] {
					cell += "'"
				}
				cells[t][y][x] = cell
			}
		}
	}

	firstColWidth := 0
	otherColWidth := 0
	for _, generation := range cells {
		for _, row := range generation {
			if len(row) == 0 {
				continue
			}
			if len(row[0]) > firstColWidth {
				firstColWidth = len(row[0])
			}
			for _, cell := range row[1:] {
				if len(cell) > otherColWidth {
					otherColWidth = len(cell)
				}
			}
		}
	}

	pad := func(s string, width int) string {
		if len(s) >= width {
			return s
		}
		return strings.Repeat(" ", width-len(s)) + s
	}

	var b strings.Builder
	if opts.Rule != nil {
		fmt.Fprintf(&b, "Rule = %s\n", opts.Rule.String())
	}

	writeGeneration := func(generation [][]string) {
		lines := make([]string, len(generation))
		for y, row := range generation {
			padded := make([]string, len(row))
			for x, cell := range row {
				width := otherColWidth
				if x == 0 {
					width = firstColWidth
				}
				padded[x] = pad(cell, width)
			}
			lines[y] = strings.Join(padded, ",")
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	if len(cells) > 0 {
		writeGeneration(cells[0])
	}
	if !opts.Determined {
		for _, generation := range cells[1:] {
			b.WriteString("\n")
			writeGeneration(generation)
		}
	}

	return b.String()
}

// blockChars maps a (top, bottom) pair of live/dead states to the Unicode
// block element representing them stacked in one character cell.
var blockChars = map[[2]bool]rune{
	{false, false}: ' ',
	{true, false}:  '▀',
	{false, true}:  '▄',
	{true, true}:   '█',
}

// Blk renders the first generation of a resolved grid as a compact preview,
// pairing rows two at a time into Unicode block-element characters. This
// format is not present in the original implementation; it is supplemented
// per spec.md §6 in the same plain, column-free style as RLE.
func Blk(pattern [][][]string) (string, error) {
	if len(pattern) == 0 {
		return "", nil
	}
	rendered, err := toBool(pattern[0])
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for y := 0; y < len(rendered); y += 2 {
		top := rendered[y]
		var bottom []bool
		if y+1 < len(rendered) {
			bottom = rendered[y+1]
		} else {
			bottom = make([]bool, len(top))
		}
		for x := range top {
			b.WriteRune(blockChars[[2]bool{top[x], bottom[x]}])
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func toBool(generation [][]string) ([][]bool, error) {
	out := make([][]bool, len(generation))
	for y, row := range generation {
		out[y] = make([]bool, len(row))
		for x, cell := range row {
			switch cell {
			case "0":
				out[y][x] = false
			case "1":
				out[y][x] = true
			default:
				return nil, &ErrInvalidCell{cell}
			}
		}
	}
	return out, nil
}

// StringsFromLits converts a numbered grid.Grid into a "0"/"1" string grid
// by consulting a model (variable id -> truth value) produced by the SAT
// solver.
func StringsFromLits(g grid.Grid, model map[int]bool) [][][]string {
	out := make([][][]string, len(g))
	for t, generation := range g {
		out[t] = make([][]string, len(generation))
		for y, row := range generation {
			out[t][y] = make([]string, len(row))
			for x, cell := range row {
				v, polarity := cell.Decompose()
				val := model[v]
				if polarity < 0 {
					val = !val
				}
				if val {
					out[t][y][x] = "1"
				} else {
					out[t][y][x] = "0"
				}
			}
		}
	}
	return out
}
