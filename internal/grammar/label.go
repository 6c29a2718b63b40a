package grammar

import "fmt"

// Label is the coarse topology class a fine-grained state maps to.
type Label uint8

const (
	Inner    Label = 0
	Outer    Label = 1
	Membrane Label = 2
	Signal   Label = 3
)

var labelLetters = [...]byte{Inner: 'I', Outer: 'O', Membrane: 'M', Signal: 'S'}

func (l Label) String() string {
	if int(l) < len(labelLetters) {
		return string(labelLetters[l])
	}
	return fmt.Sprintf("Label(%d)", uint8(l))
}

// ParseLabel decodes a single raw topology letter. Unrecognized letters are
// a hard error; silently coercing them would corrupt downstream evaluation
// without any signal.
func ParseLabel(c byte) (Label, error) {
	switch c {
	case 'I':
		return Inner, nil
	case 'O':
		return Outer, nil
	case 'M':
		return Membrane, nil
	case 'S':
		return Signal, nil
	default:
		return 0, fmt.Errorf("grammar: unrecognized topology label %q", string(c))
	}
}

// ParseLabels decodes a raw label line such as "IIIMMMMOOO".
func ParseLabels(s string) ([]Label, error) {
	labels := make([]Label, len(s))
	for i := 0; i < len(s); i++ {
		l, err := ParseLabel(s[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		labels[i] = l
	}
	return labels, nil
}

// FormatLabels renders labels as a raw letter string.
func FormatLabels(labels []Label) string {
	out := make([]byte, len(labels))
	for i, l := range labels {
		if int(l) >= len(labelLetters) {
			out[i] = '?'
			continue
		}
		out[i] = labelLetters[l]
	}
	return string(out)
}
