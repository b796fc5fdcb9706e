package stream

import "strings"

// DefaultMaxBuffer caps how much text the detector will hold while waiting
// for a top-level JSON object to close before giving up and reclassifying
// the buffered content as plain text.
const DefaultMaxBuffer = 4096

// FragmentKind classifies a piece of detector output.
type FragmentKind int

const (
	// KindText is ordinary conversational text, safe to forward.
	KindText FragmentKind = iota
	// KindJSON is a complete top-level JSON object, a tool call candidate.
	KindJSON
)

// Fragment is a classified slice of the upstream text stream.
type Fragment struct {
	Kind    FragmentKind
	Content string
}

// Detector consumes incremental text deltas from the model and separates
// plain text from complete top-level JSON objects. Text that contains no
// opening brace is released immediately; once a brace is seen, everything
// from the brace onward is withheld until the object closes at depth zero,
// the buffer outgrows maxBuffer, or the stream ends.
type Detector struct {
	buf       strings.Builder
	maxBuffer int
}

// NewDetector returns a detector with the given buffer guard. A guard of
// zero or less selects DefaultMaxBuffer.
func NewDetector(maxBuffer int) *Detector {
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBuffer
	}
	return &Detector{maxBuffer: maxBuffer}
}

// Feed appends one delta and returns every fragment that became
// classifiable. Deltas may be empty and may split a JSON object anywhere,
// including between a backslash and the character it escapes.
func (d *Detector) Feed(delta string) []Fragment {
	if delta == "" {
		return nil
	}
	d.buf.WriteString(delta)
	return d.drain(false)
}

// Flush signals end-of-stream and returns whatever is still buffered as
// plain text. An unterminated JSON object is never a tool call.
func (d *Detector) Flush() []Fragment {
	return d.drain(true)
}

func (d *Detector) drain(eof bool) []Fragment {
	var out []Fragment
	b := d.buf.String()

	for {
		start := strings.IndexByte(b, '{')
		if start < 0 {
			// Fast path: nothing brace-like, forward everything.
			if b != "" {
				out = append(out, Fragment{Kind: KindText, Content: b})
			}
			b = ""
			break
		}

		end, complete := scanObject(b, start)
		if !complete {
			if eof || len(b)-start > d.maxBuffer {
				// The brace never resolved into an object; it was prose.
				out = append(out, Fragment{Kind: KindText, Content: b})
				b = ""
				break
			}
			// Release the prefix before the brace, keep waiting on the rest.
			if start > 0 {
				out = append(out, Fragment{Kind: KindText, Content: b[:start]})
				b = b[start:]
			}
			break
		}

		if start > 0 {
			out = append(out, Fragment{Kind: KindText, Content: b[:start]})
		}
		out = append(out, Fragment{Kind: KindJSON, Content: b[start : end+1]})
		b = b[end+1:]
	}

	d.buf.Reset()
	d.buf.WriteString(b)
	return out
}

// scanObject walks b from the opening brace at start, tracking brace depth,
// string-literal state and escape state, so that quoted braces and escaped
// quotes never perturb the depth. It returns the index of the matching
// closing brace and whether the object is complete.
func scanObject(b string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(b); i++ {
		c := b[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
