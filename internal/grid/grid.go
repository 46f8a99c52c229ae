// Package grid implements the three-dimensional pattern grid: parsing its
// textual form, resolving out-of-bounds neighbor lookups against a
// (possibly time-periodic) background, and the coordinate arithmetic shared
// by the symmetry and transition encoders.
package grid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/totalistic/lifesearch/internal/literal"
)

// Raw is a parsed-but-unnumbered pattern: one string token per cell, indexed
// [t][y][x], exactly as it appeared in the source text (after whitespace and
// comment stripping and "'"-suffix removal).
type Raw [][][]string

// Grid is a fully numbered pattern, one literal per cell, indexed [t][y][x].
type Grid [][][]literal.Lit

// Ignore is a parallel [t][y][x] array of "ignore this cell's transition"
// flags, set by a trailing "'" in the source text.
type Ignore [][][]bool

// ErrNonCuboidal is returned by Parse when generations differ in row count
// or rows differ in cell count.
var ErrNonCuboidal = fmt.Errorf("grid: search pattern is not cuboidal")

var (
	newlineCR     = regexp.MustCompile(`\r`)
	comment       = regexp.MustCompile(`#.*`)
	generationSep = regexp.MustCompile(`[ ,\t]*\n(?:[ ,\t]*\n)+[ ,\t]*`)
	lineSep       = regexp.MustCompile(`[ ,\t]*\n[ ,\t]*`)
	cellSep       = regexp.MustCompile(`[ ,\t]+`)
)

// Parse decodes a pattern given in the project's plain-text grid notation:
// generations separated by a blank line, rows by a single newline, cells by
// commas/spaces/tabs, "#" starting a line comment, and a trailing "'" on a
// cell marking its transition as ignored. It mirrors
// formatting.py:parse_input_string, including its liberal treatment of
// mixed \r/\n line endings.
func Parse(input string) (Raw, Ignore, error) {
	if strings.Contains(input, "\r") && !strings.Contains(input, "\n") {
		input = strings.ReplaceAll(input, "\r", "\n")
	} else {
		input = newlineCR.ReplaceAllString(input, "")
	}

	input = comment.ReplaceAllString(input, "")
	input = strings.Trim(input, " ,\t\n")

	generations := generationSep.Split(input, -1)
	raw := make(Raw, len(generations))
	ignore := make(Ignore, len(generations))

	for t, generation := range generations {
		lines := lineSep.Split(generation, -1)
		raw[t] = make([][]string, len(lines))
		ignore[t] = make([][]bool, len(lines))
		for y, line := range lines {
			cells := cellSep.Split(line, -1)
			raw[t][y] = make([]string, len(cells))
			ignore[t][y] = make([]bool, len(cells))
			for x, cell := range cells {
				standardized := literal.Standardize(cell)
				ignore[t][y][x] = strings.HasSuffix(standardized, "'")
				raw[t][y][x] = strings.TrimSuffix(standardized, "'")
			}
		}
	}

	if !isCuboidal(raw) {
		return nil, nil, ErrNonCuboidal
	}
	return raw, ignore, nil
}

func isCuboidal(raw Raw) bool {
	if len(raw) == 0 {
		return true
	}
	height := len(raw[0])
	width := 0
	if height > 0 {
		width = len(raw[0][0])
	}
	for _, generation := range raw {
		if len(generation) != height {
			return false
		}
		for _, row := range generation {
			if len(row) != width {
				return false
			}
		}
	}
	return true
}

// Dims returns a grid's width, height, and duration.
func Dims(g Grid) (width, height, duration int) {
	duration = len(g)
	if duration == 0 {
		return 0, 0, 0
	}
	height = len(g[0])
	if height == 0 {
		return 0, height, duration
	}
	width = len(g[0][0])
	return width, height, duration
}

// neighborOffsets lists the eight clockwise (dx, dy) offsets starting due
// east, matching literal_manipulation.py:neighbours_from_coordinates.
var neighborOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// Neighbours returns the eight neighbor literals of (x, y, t) in g, using
// background (already offset so that background[0][0][0] covers the cell
// one step beyond g's origin) to resolve any neighbor that falls outside
// g's bounds, wrapping the background tile periodically in x, y, and t.
func Neighbours(g Grid, x, y, t int, background Grid) [8]literal.Lit {
	width, height, _ := Dims(g)
	bgWidth, bgHeight, bgDuration := Dims(background)

	var result [8]literal.Lit
	for i, offset := range neighborOffsets {
		nx, ny := x+offset[0], y+offset[1]
		if nx >= 0 && nx < width && ny >= 0 && ny < height {
			result[i] = g[t][ny][nx]
			continue
		}
		result[i] = background[mod(t, bgDuration)][mod(ny, bgHeight)][mod(nx, bgWidth)]
	}
	return result
}

func mod(a, b int) int {
	if b == 0 {
		return 0
	}
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// OffsetBackground cyclically shifts a (possibly time-periodic) background
// grid by (xOffset, yOffset, tOffset), wrapping each axis by its own extent,
// matching literal_manipulation.py:offset_background. It is used to align a
// background tile's origin with the cell one step beyond the foreground
// grid's edge before embedding it.
func OffsetBackground(g Grid, xOffset, yOffset, tOffset int) Grid {
	width, height, duration := Dims(g)
	out := make(Grid, duration)
	for t := 0; t < duration; t++ {
		out[t] = make([][]literal.Lit, height)
		for y := 0; y < height; y++ {
			out[t][y] = make([]literal.Lit, width)
			for x := 0; x < width; x++ {
				out[t][y][x] = g[mod(t+tOffset, duration)][mod(y+yOffset, height)][mod(x+xOffset, width)]
			}
		}
	}
	return out
}

// Embed surrounds foreground with a one-cell border drawn from background
// (already offset via OffsetBackground so its origin covers that border),
// returning a grid two cells wider and taller than foreground. Matches the
// grid-surrounding step in SearchPattern's constructor.
func Embed(foreground, background Grid) Grid {
	width, height, duration := Dims(foreground)
	bgWidth, bgHeight, bgDuration := Dims(background)

	out := make(Grid, duration)
	for t := 0; t < duration; t++ {
		out[t] = make([][]literal.Lit, height+2)
		for y := 0; y < height+2; y++ {
			out[t][y] = make([]literal.Lit, width+2)
			for x := 0; x < width+2; x++ {
				if x >= 1 && x <= width && y >= 1 && y <= height {
					out[t][y][x] = foreground[t][y-1][x-1]
				} else {
					out[t][y][x] = background[mod(t, bgDuration)][mod(y, bgHeight)][mod(x, bgWidth)]
				}
			}
		}
	}
	return out
}
