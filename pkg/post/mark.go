package post

import "fmt"

// MarkType identifies a character-level annotation on a text run.
type MarkType string

const (
	MarkBold   MarkType = "bold"
	MarkItalic MarkType = "italic"
	MarkCode   MarkType = "code"
	MarkLink   MarkType = "link"
)

// Mark is a formatting annotation as it appears on the wire.
type Mark struct {
	Type  MarkType   `json:"type"`
	Attrs *LinkAttrs `json:"attrs,omitempty"`
}

// LinkAttrs carries the target of a link mark.
type LinkAttrs struct {
	Href string `json:"href"`
}

// Bold returns a bold mark.
func Bold() Mark { return Mark{Type: MarkBold} }

// Italic returns an italic mark.
func Italic() Mark { return Mark{Type: MarkItalic} }

// Code returns an inline code mark.
func Code() Mark { return Mark{Type: MarkCode} }

// Link returns a link mark pointing at href.
func Link(href string) Mark {
	return Mark{Type: MarkLink, Attrs: &LinkAttrs{Href: href}}
}

func (m Mark) validate() error {
	switch m.Type {
	case MarkBold, MarkItalic, MarkCode:
		if m.Attrs != nil {
			return fmt.Errorf("%w: mark %q takes no attributes", ErrInvalidAttribute, m.Type)
		}
		return nil
	case MarkLink:
		if m.Attrs == nil || m.Attrs.Href == "" {
			return fmt.Errorf("%w: link mark requires an href", ErrInvalidAttribute)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown mark type %q", ErrInvalidAttribute, m.Type)
	}
}

// MarkSpec is the declarative form of a mark used by [Chunk] and [Item].
// Href is only meaningful for links.
type MarkSpec struct {
	Type MarkType `yaml:"type" json:"type"`
	Href string   `yaml:"href,omitempty" json:"href,omitempty"`
}

// Mark converts the description into a wire mark.
func (s MarkSpec) Mark() (Mark, error) {
	m := Mark{Type: s.Type}
	if s.Type == MarkLink {
		m.Attrs = &LinkAttrs{Href: s.Href}
	}
	if err := m.validate(); err != nil {
		return Mark{}, err
	}
	return m, nil
}

func marksFromSpecs(specs []MarkSpec) ([]Mark, error) {
	marks := make([]Mark, 0, len(specs))
	for _, s := range specs {
		m, err := s.Mark()
		if err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, nil
}
