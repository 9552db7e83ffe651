package voice

// transcript keeps the most recent labelled lines, oldest dropped first.
type transcript struct {
	lines []string
	max   int
}

func newTranscript(max int) *transcript {
	return &transcript{max: max, lines: make([]string, 0, max)}
}

func (t *transcript) add(text string) {
	if len(t.lines) == t.max {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.max-1]
	}
	t.lines = append(t.lines, transcriptLabel+text)
}

func (t *transcript) reset() {
	t.lines = t.lines[:0]
}

func (t *transcript) snapshot() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}
