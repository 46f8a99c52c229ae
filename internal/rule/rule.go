// Package rule implements Hensel-notation outer-totalistic rulestring
// parsing and the canonical 8-neighbor transition lookup used to translate a
// cell's live neighbors into a birth/survival table key.
package rule

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/totalistic/lifesearch/internal/literal"
)

// Transition is one of the 102 canonical table keys: a birth/survival
// letter ("B" or "S"), a neighbor count ("0".."8"), and a Hensel character
// naming the neighborhood isomorphism class, e.g. "B3k" or "S2a".
type Transition string

// Table maps every canonical Transition to a literal: literal.True if the
// transition is always enabled, literal.False if always disabled, or a
// named variable literal if the rule leaves it free (the "partial rule"
// case, spec.md §4.2).
type Table map[Transition]literal.Lit

// possibleTransitions lists, for each neighbor count, the sorted alphabet of
// Hensel characters naming that count's neighborhood isomorphism classes.
var possibleTransitions = map[string]string{
	"0": sortedAlphabet("c"),
	"1": sortedAlphabet("ce"),
	"2": sortedAlphabet("cekain"),
	"3": sortedAlphabet("cekainyqjr"),
	"4": sortedAlphabet("cekainyqjrtwz"),
	"5": sortedAlphabet("cekainyqjr"),
	"6": sortedAlphabet("cekain"),
	"7": sortedAlphabet("ce"),
	"8": sortedAlphabet("c"),
}

func sortedAlphabet(s string) string {
	r := strings.Split(s, "")
	sort.Strings(r)
	return strings.Join(r, "")
}

// transitionLookup maps an 8-neighbor on/off pattern (in canonical clockwise
// order, on=1/off=-1) to the Hensel character naming its isomorphism class.
// Keys here are listed in one representative orientation; CanonicalCode
// applies the D4 symmetry group to find the matching orientation.
var transitionLookup = map[[8]int]string{
	{-1, -1, -1, -1, -1, -1, -1, -1}: "0c",
	{-1, 1, -1, -1, -1, -1, -1, -1}:  "1c",
	{1, -1, -1, -1, -1, -1, -1, -1}:  "1e",
	{-1, 1, -1, 1, -1, -1, -1, -1}:   "2c",
	{1, -1, 1, -1, -1, -1, -1, -1}:   "2e",
	{1, -1, -1, 1, -1, -1, -1, -1}:   "2k",
	{1, 1, -1, -1, -1, -1, -1, -1}:   "2a",
	{1, -1, -1, -1, 1, -1, -1, -1}:   "2i",
	{-1, 1, -1, -1, -1, 1, -1, -1}:   "2n",
	{-1, 1, -1, 1, -1, 1, -1, -1}:    "3c",
	{1, -1, 1, -1, 1, -1, -1, -1}:    "3e",
	{1, -1, 1, -1, -1, 1, -1, -1}:    "3k",
	{1, 1, 1, -1, -1, -1, -1, -1}:    "3a",
	{1, 1, -1, -1, -1, -1, -1, 1}:    "3i",
	{1, 1, -1, 1, -1, -1, -1, -1}:    "3n",
	{1, -1, -1, 1, -1, 1, -1, -1}:    "3y",
	{1, 1, -1, -1, -1, 1, -1, -1}:    "3q",
	{1, 1, -1, -1, -1, -1, 1, -1}:    "3j",
	{1, 1, -1, -1, 1, -1, -1, -1}:    "3r",
	{-1, 1, -1, 1, -1, 1, -1, 1}:     "4c",
	{1, -1, 1, -1, 1, -1, 1, -1}:     "4e",
	{1, 1, -1, 1, -1, -1, 1, -1}:     "4k",
	{1, 1, 1, 1, -1, -1, -1, -1}:     "4a",
	{1, 1, -1, 1, 1, -1, -1, -1}:     "4i",
	{1, 1, -1, 1, -1, -1, -1, 1}:     "4n",
	{1, 1, -1, 1, -1, 1, -1, -1}:     "4y",
	{1, 1, 1, -1, -1, 1, -1, -1}:     "4q",
	{1, 1, -1, -1, 1, -1, 1, -1}:     "4j",
	{1, 1, 1, -1, 1, -1, -1, -1}:     "4r",
	{1, 1, -1, -1, 1, -1, -1, 1}:     "4t",
	{1, 1, -1, -1, -1, 1, 1, -1}:     "4w",
	{1, 1, -1, -1, 1, 1, -1, -1}:     "4z",
	{1, 1, 1, -1, 1, -1, 1, -1}:      "5c",
	{1, 1, -1, 1, -1, 1, -1, 1}:      "5e",
	{1, 1, -1, 1, -1, 1, 1, -1}:      "5k",
	{1, 1, 1, 1, -1, -1, -1, 1}:      "5a",
	{1, 1, 1, 1, 1, -1, -1, -1}:      "5i",
	{1, 1, 1, 1, -1, -1, 1, -1}:      "5n",
	{1, 1, -1, 1, 1, -1, 1, -1}:      "5y",
	{1, 1, 1, -1, 1, 1, -1, -1}:      "5q",
	{1, 1, 1, 1, -1, 1, -1, -1}:      "5j",
	{1, 1, -1, 1, 1, 1, -1, -1}:      "5r",
	{1, 1, 1, 1, 1, -1, 1, -1}:       "6c",
	{1, 1, 1, 1, -1, 1, -1, 1}:       "6e",
	{1, 1, 1, 1, -1, 1, 1, -1}:       "6k",
	{1, 1, 1, 1, 1, 1, -1, -1}:       "6a",
	{1, 1, -1, 1, 1, 1, -1, 1}:       "6i",
	{1, 1, 1, -1, 1, 1, 1, -1}:       "6n",
	{1, 1, 1, 1, 1, 1, 1, -1}:        "7c",
	{1, 1, 1, 1, 1, 1, -1, 1}:        "7e",
	{1, 1, 1, 1, 1, 1, 1, 1}:         "8c",
}

// symmetries is the D4 dihedral group acting on the 8-position clockwise
// neighbor ordering: each entry permutes indices of a neighbor array into
// one orientation reachable by rotation or reflection.
var symmetries = [8][8]int{
	{0, 1, 2, 3, 4, 5, 6, 7},
	{6, 7, 0, 1, 2, 3, 4, 5},
	{4, 5, 6, 7, 0, 1, 2, 3},
	{2, 3, 4, 5, 6, 7, 0, 1},
	{6, 5, 4, 3, 2, 1, 0, 7},
	{0, 7, 6, 5, 4, 3, 2, 1},
	{2, 1, 0, 7, 6, 5, 4, 3},
	{4, 3, 2, 1, 0, 7, 6, 5},
}

// CanonicalCode reports the Hensel character naming the isomorphism class of
// an 8-neighbor live/dead pattern (in clockwise order starting anywhere),
// trying every D4 orientation of it against transitionLookup.
func CanonicalCode(neighbours [8]int) (string, error) {
	for _, perm := range symmetries {
		var oriented [8]int
		for i, src := range perm {
			oriented[i] = neighbours[src]
		}
		if code, ok := transitionLookup[oriented]; ok {
			return code, nil
		}
	}
	return "", fmt.Errorf("rule: neighbor pattern %v matches no canonical class", neighbours)
}

// TransitionFromCells returns the Transition key (e.g. "B3k") for a cell
// whose eight neighbors are neighbours: a "B" (birth) key when birth is true,
// for a cell that is currently dead, and an "S" (survival) key when birth is
// false, for a cell that is currently alive.
func TransitionFromCells(birth bool, neighbours [8]int) (Transition, error) {
	code, err := CanonicalCode(neighbours)
	if err != nil {
		return "", err
	}
	letter := "S"
	if birth {
		letter = "B"
	}
	return Transition(letter + code), nil
}

var (
	spaceRE = regexp.MustCompile(`\s+`)
)

// ErrInvalidRulestring is returned by Parse for any rulestring that fails
// the grammar checks rules.py enforces via assertions.
type ErrInvalidRulestring struct {
	Rulestring string
	Reason     string
}

func (e *ErrInvalidRulestring) Error() string {
	return fmt.Sprintf("rule: rulestring %q not recognized: %s", e.Rulestring, e.Reason)
}

// Parse decodes a Hensel-notation rulestring (optionally "p"-prefixed for a
// partial rule whose unconstrained transitions become free variables
// numbered starting at numberOfVariables+1) into a Table. It returns the
// updated variable counter alongside the table so callers can keep
// allocating distinct free-transition variables across several rulestrings.
func Parse(rulestring string, numberOfVariables int) (Table, int, error) {
	original := rulestring
	partial := false

	if len(rulestring) > 0 && (rulestring[0] == 'p' || rulestring[0] == 'P') {
		partial = true
		if len(rulestring) == 1 {
			rulestring = "B012345678/S012345678"
		} else {
			rulestring = rulestring[1:]
		}
	}

	rulestring = strings.ToUpper(spaceRE.ReplaceAllString(rulestring, ""))
	parts := strings.Split(rulestring, "/")

	var birthString, survivalString string
	switch len(parts) {
	case 1:
		if !strings.Contains(rulestring, "B") && !strings.Contains(rulestring, "S") {
			return nil, 0, &ErrInvalidRulestring{original, `no "B" or "S"`}
		}
		bPos := strings.Index(rulestring, "B")
		sPos := strings.Index(rulestring, "S")
		trimmed := strings.Trim(rulestring, "BS")
		halves := splitOnBS(trimmed)
		if len(halves) >= 3 {
			return nil, 0, &ErrInvalidRulestring{original, "too many B/S segments"}
		}
		if bPos > sPos {
			survivalString = halves[0]
			if len(halves) == 2 {
				birthString = halves[1]
			}
		} else {
			birthString = halves[0]
			if len(halves) == 2 {
				survivalString = halves[1]
			}
		}
	case 2:
		if strings.Contains(parts[0], "B") || strings.Contains(parts[1], "S") {
			birthString = parts[0]
			survivalString = parts[1]
		} else {
			survivalString = parts[0]
			birthString = parts[1]
		}
	default:
		return nil, 0, &ErrInvalidRulestring{original, `too many "/"s`}
	}

	if strings.Contains(birthString, "S") || strings.Contains(survivalString, "B") {
		return nil, 0, &ErrInvalidRulestring{original, "B/S segments crossed"}
	}

	birthString = strings.ToLower(strings.ReplaceAll(birthString, "B", ""))
	survivalString = strings.ToLower(strings.ReplaceAll(survivalString, "S", ""))

	if (birthString != "" && !strings.Contains("012345678", string(birthString[0]))) ||
		(survivalString != "" && !strings.Contains("012345678", string(survivalString[0]))) {
		return nil, 0, &ErrInvalidRulestring{original, "segment does not start with a neighbor count"}
	}

	table := make(Table, 102)

	for _, spec := range []struct {
		letter string
		body   string
	}{{"B", birthString}, {"S", survivalString}} {
		transitions := splitTransitions(spec.body)
		for _, transition := range transitions {
			if err := applyTransition(table, spec.letter, transition, partial, &numberOfVariables); err != nil {
				return nil, 0, err
			}
		}
		for _, count := range "012345678" {
			key := Transition(spec.letter + string(count) + "c")
			if _, ok := table[key]; !ok {
				for _, ch := range possibleTransitions[string(count)] {
					table[Transition(spec.letter+string(count)+string(ch))] = literal.False
				}
			}
		}
	}

	return table, numberOfVariables, nil
}

// splitOnBS splits s at every run of 'B'/'S' characters, mirroring
// re.split("[BS]*", s) in the original.
func splitOnBS(s string) []string {
	return regexp.MustCompile(`[BS]+`).Split(s, -1)
}

// splitTransitions breaks a birth or survival body ("3-ckn5e") into its
// per-neighbor-count segments ("3-ckn", "5e").
func splitTransitions(body string) []string {
	if body == "" {
		return nil
	}
	var segments []string
	start := 0
	for i := 1; i < len(body); i++ {
		if strings.ContainsRune("012345678", rune(body[i])) {
			segments = append(segments, body[start:i])
			start = i
		}
	}
	segments = append(segments, body[start:])
	return segments
}

func applyTransition(table Table, letter, transition string, partial bool, numberOfVariables *int) error {
	count := transition[0:1]
	alphabet := possibleTransitions[count]

	setAll := func(value literal.Lit) {
		for _, ch := range alphabet {
			table[Transition(letter+count+string(ch))] = value
		}
	}
	setChar := func(ch byte, value literal.Lit) {
		table[Transition(letter+count+string(ch))] = value
	}

	if !partial {
		switch {
		case len(transition) == 1:
			setAll(literal.True)
		case transition[1] == '-':
			banned := transition[2:]
			for i := 0; i < len(banned); i++ {
				if !strings.Contains(alphabet, string(banned[i])) {
					return &ErrInvalidRulestring{transition, "unrecognized character"}
				}
			}
			for _, ch := range alphabet {
				if strings.IndexByte(banned, byte(ch)) >= 0 {
					setChar(byte(ch), literal.False)
				} else {
					setChar(byte(ch), literal.True)
				}
			}
		default:
			chars := transition[1:]
			for i := 0; i < len(chars); i++ {
				if !strings.Contains(alphabet, string(chars[i])) {
					return &ErrInvalidRulestring{transition, "unrecognized character"}
				}
			}
			for _, ch := range alphabet {
				if strings.IndexByte(chars, byte(ch)) >= 0 {
					setChar(byte(ch), literal.True)
				} else {
					setChar(byte(ch), literal.False)
				}
			}
		}
		return nil
	}

	if len(transition) == 1 {
		for _, ch := range alphabet {
			*numberOfVariables++
			setChar(byte(ch), literal.Lit(*numberOfVariables))
		}
		return nil
	}

	chars := transition[1:]
	banned := ""
	if idx := strings.IndexByte(chars, '-'); idx >= 0 {
		banned = chars[idx+1:]
		chars = chars[:idx]
	}
	for _, ch := range alphabet {
		switch {
		case strings.IndexByte(chars, byte(ch)) >= 0:
			setChar(byte(ch), literal.True)
		case strings.IndexByte(banned, byte(ch)) >= 0:
			setChar(byte(ch), literal.False)
		default:
			*numberOfVariables++
			setChar(byte(ch), literal.Lit(*numberOfVariables))
		}
	}
	return nil
}

// String renders a Table back into Hensel-notation form. When one free
// (non-constant) variable is shared by more than one transition the result
// is the verbose "{'B3k': '17', ...}" dump rules.py falls back to for rules it
// cannot express compactly; otherwise it reconstructs a "Bx/Sy" string,
// prefixed with "p" (a partial rule) when any transition is free.
func (t Table) String() string {
	names := make(map[literal.Lit]bool)
	hasDuplicateVar := false
	seen := make(map[literal.Lit]bool)
	for _, v := range t {
		if v != literal.True && v != literal.False {
			names[v] = true
			if seen[v] {
				hasDuplicateVar = true
			}
			seen[v] = true
		}
	}

	if hasDuplicateVar {
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "'%s': '%d'", k, t[Transition(k)])
		}
		b.WriteString("}")
		return b.String()
	}

	partial := len(names) > 0

	var b strings.Builder
	if partial {
		b.WriteString("p")
	}
	for _, letter := range []string{"B", "S"} {
		b.WriteString(letter)
		for _, count := range "012345678" {
			alphabet := possibleTransitions[string(count)]
			if !partial {
				total := len(alphabet)
				on := 0
				for _, ch := range alphabet {
					if t[Transition(letter+string(count)+string(ch))] == literal.True {
						on++
					}
				}
				switch {
				case on == total:
					b.WriteString(string(count))
				case on > 0 && on <= total/2:
					b.WriteString(string(count))
					for _, ch := range alphabet {
						if t[Transition(letter+string(count)+string(ch))] == literal.True {
							b.WriteRune(ch)
						}
					}
				case on != 0:
					b.WriteString(string(count))
					b.WriteString("-")
					for _, ch := range alphabet {
						if t[Transition(letter+string(count)+string(ch))] == literal.False {
							b.WriteRune(ch)
						}
					}
				}
			} else {
				var chars, banned strings.Builder
				for _, ch := range alphabet {
					switch t[Transition(letter+string(count)+string(ch))] {
					case literal.False:
						banned.WriteRune(ch)
					case literal.True:
						chars.WriteRune(ch)
					}
				}
				if chars.Len() == 0 && banned.Len() == 0 {
					b.WriteString(string(count))
				} else if banned.Len() < len(alphabet) {
					b.WriteString(string(count))
					b.WriteString(chars.String())
					if banned.Len() > 0 {
						b.WriteString("-")
						b.WriteString(banned.String())
					}
				}
			}
		}
		if letter == "B" {
			b.WriteString("/")
		}
	}
	return b.String()
}
