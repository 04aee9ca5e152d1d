package treequence

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	MinPitch = 0
	MaxPitch = 127
)

var letterOffsets = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// typographic marks that show up when names are pasted from scores
var markNormalizer = runes.Map(func(r rune) rune {
	switch r {
	case '’', '‘', '′', '´':
		return '\''
	case '♯':
		return '#'
	case '♭':
		return 'b'
	}
	return r
})

// NameToMIDI converts a pitch name into a MIDI pitch. Integer strings are
// returned as is. Names follow two conventions, both anchored at middle C = 60:
//
//	,,,C ,,C ,C C c c' c'' ...   (commas lower uppercase names, apostrophes raise lowercase ones)
//	C3 C2 C1 C0 c0 c1 c2 ...     (uppercase digits count octaves down from C0 = 36, lowercase up from c0 = 48)
//
// A single '#' or 'b' after the letter sharpens or flattens the note, and
// spellings such as B# or Cb move across the octave boundary accordingly.
func NameToMIDI(text string) (int, error) {
	if p, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		return p, nil
	}
	name, _, err := transform.String(markNormalizer, strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPitchName, text)
	}
	p, ok := parsePitchName(name)
	if !ok || p < MinPitch || p > MaxPitch {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPitchName, text)
	}
	return p, nil
}

// MustPitch is like NameToMIDI but panics on unknown names. Intended for
// literals in composition code.
func MustPitch(text string) int {
	p, err := NameToMIDI(text)
	if err != nil {
		panic(err)
	}
	return p
}

func parsePitchName(name string) (int, bool) {
	commas := 0
	for commas < len(name) && name[commas] == ',' {
		commas++
	}
	name = name[commas:]
	if len(name) == 0 {
		return 0, false
	}
	letter := name[0]
	upper := letter >= 'A' && letter <= 'G'
	offset, ok := letterOffsets[letter|0x20]
	if !ok {
		return 0, false
	}
	if commas > 0 && !upper {
		return 0, false
	}
	rest := name[1:]
	if len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			offset++
		} else {
			offset--
		}
		rest = rest[1:]
	}
	base := 48
	if upper {
		base = 36
	}
	switch {
	case rest == "":
	case strings.Trim(rest, "'") == "":
		if upper || commas > 0 {
			return 0, false
		}
		base += 12 * len(rest)
	case strings.Trim(rest, "0123456789") == "":
		if commas > 0 {
			return 0, false
		}
		octaves, err := strconv.Atoi(rest)
		if err != nil {
			return 0, false
		}
		if upper {
			base -= 12 * octaves
		} else {
			base += 12 * octaves
		}
	default:
		return 0, false
	}
	return base - 12*commas + offset, true
}
