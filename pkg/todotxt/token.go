package todotxt

// Kind is the lexical category of a Token.
type Kind int

const (
	KindDone Kind = iota + 1
	KindPriority
	KindDate
	KindProject
	KindContext
	KindMetadata
	KindWord
)

func (k Kind) String() string {
	switch k {
	case KindDone:
		return "DONE"
	case KindPriority:
		return "PRIORITY"
	case KindDate:
		return "DATE"
	case KindProject:
		return "PROJECT_TAG"
	case KindContext:
		return "CONTEXT_TAG"
	case KindMetadata:
		return "METADATA"
	case KindWord:
		return "WORD"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes k by name, so JSON carries "PRIORITY" instead of 2.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Token is a classified field of a line. Only the payload fields that
// belong to Kind are set.
type Token struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	Pos  int    `json:"pos"` // byte offset in the trimmed line

	Priority Priority `json:"priority,omitempty"`
	Date     Date     `json:"date,omitzero"`
	Tag      string   `json:"tag,omitempty"`
	Key      string   `json:"key,omitempty"`
	Value    string   `json:"value,omitempty"`
}

func (t Token) String() string {
	return t.Kind.String() + "(" + t.Text + ")"
}
