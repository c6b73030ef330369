package dispatch

import "strings"

// Placeholder markers recognized in InsertText content.
const (
	selectionPlaceholder = "{{selection}}"
	cursorMarker         = "{||}"
	pairMarker           = "{|}"
)

// resolved is insertion text plus the cursor/selection directive
// found in it. Start and End are byte offsets into Text.
type resolved struct {
	Text string

	// HasTarget is set when a marker directed cursor placement.
	// Start == End places a collapsed caret.
	HasTarget bool
	Start     int
	End       int
}

// resolvePlaceholders substitutes {{selection}} and strips cursor
// markers out of literal content. Marker pairing is validated here,
// at insertion time: an odd {|} count, more than one pair, more than
// one {||}, or mixing both kinds is an error.
func resolvePlaceholders(literal, selection string) (resolved, error) {
	content := strings.ReplaceAll(literal, selectionPlaceholder, selection)

	var (
		b         strings.Builder
		cursorPos []int
		pairPos   []int
	)
	for i := 0; i < len(content); {
		switch {
		case strings.HasPrefix(content[i:], cursorMarker):
			cursorPos = append(cursorPos, b.Len())
			i += len(cursorMarker)
		case strings.HasPrefix(content[i:], pairMarker):
			pairPos = append(pairPos, b.Len())
			i += len(pairMarker)
		default:
			b.WriteByte(content[i])
			i++
		}
	}

	switch {
	case len(cursorPos) > 1:
		return resolved{}, Errorf("more than one {||} marker").Err
	case len(pairPos)%2 == 1:
		return resolved{}, Errorf("unpaired {|} marker").Err
	case len(pairPos) > 2:
		return resolved{}, Errorf("more than one {|} pair").Err
	case len(cursorPos) == 1 && len(pairPos) > 0:
		return resolved{}, Errorf("{||} and a {|} pair conflict").Err
	}

	res := resolved{Text: b.String()}
	switch {
	case len(cursorPos) == 1:
		res.HasTarget = true
		res.Start, res.End = cursorPos[0], cursorPos[0]
	case len(pairPos) == 2:
		res.HasTarget = true
		res.Start, res.End = pairPos[0], pairPos[1]
	}
	return res, nil
}
