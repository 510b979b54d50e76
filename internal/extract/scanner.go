package extract

// rawMatch is one unvalidated occurrence of a dialect in the input.
type rawMatch struct {
	ordinal  string
	stem     string
	options  [4]string
	captured int
	answer   string
}

// scan returns every non-overlapping occurrence of d in text, left to right.
// Each call starts at offset zero; no cursor survives between calls.
func scan(d Dialect, text string) []rawMatch {
	if d.pattern == nil || text == "" {
		return nil
	}
	locs := d.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]rawMatch, 0, len(locs))
	for _, loc := range locs {
		m := rawMatch{
			ordinal: group(text, loc, d.ordinal),
			stem:    group(text, loc, d.stem),
			answer:  group(text, loc, d.answer),
		}
		for i, idx := range d.options {
			if !participated(loc, idx) {
				continue
			}
			m.options[i] = group(text, loc, idx)
			m.captured++
		}
		matches = append(matches, m)
	}
	return matches
}

func participated(loc []int, idx int) bool {
	return idx > 0 && 2*idx+1 < len(loc) && loc[2*idx] >= 0
}

func group(text string, loc []int, idx int) string {
	if !participated(loc, idx) {
		return ""
	}
	return text[loc[2*idx]:loc[2*idx+1]]
}
