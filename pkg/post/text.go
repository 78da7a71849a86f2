package post

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Chunk is a piece of text with its own marks. A list of chunks expresses mixed
// formatting inside one block as a flat sequence.
type Chunk struct {
	Content string     `yaml:"content" json:"content"`
	Marks   []MarkSpec `yaml:"marks,omitempty" json:"marks,omitempty"`
}

// Content is the inline content of a block: either plain text or a list of chunks.
// It decodes from a YAML or JSON string as well as from a list of chunks.
type Content struct {
	Text   string
	Chunks []Chunk
}

// Plain returns content made of one unmarked run.
func Plain(text string) Content {
	return Content{Text: text}
}

// Chunks returns content made of marked chunks.
func Chunks(chunks ...Chunk) Content {
	if chunks == nil {
		chunks = []Chunk{}
	}
	return Content{Chunks: chunks}
}

func (c Content) isChunked() bool {
	return c.Chunks != nil
}

// UnmarshalYAML accepts either a scalar string or a sequence of chunks.
func (c *Content) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = Content{}
		return value.Decode(&c.Text)
	case yaml.SequenceNode:
		var chunks []Chunk
		if err := value.Decode(&chunks); err != nil {
			return err
		}
		*c = Chunks(chunks...)
		return nil
	default:
		return fmt.Errorf("%w: content must be a string or a list of chunks (line %d)", ErrInvalidAttribute, value.Line)
	}
}

// UnmarshalJSON accepts either a string or an array of chunks.
func (c *Content) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = Plain(text)
		return nil
	}
	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("%w: content must be a string or a list of chunks", ErrInvalidAttribute)
	}
	*c = Chunks(chunks...)
	return nil
}

// MarshalJSON encodes plain content as a string and chunked content as an array.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.isChunked() {
		return json.Marshal(c.Chunks)
	}
	return json.Marshal(c.Text)
}

// Text appends an unmarked text run to the last block.
func (p *Post) Text(value string) *Post {
	if p.err != nil {
		return p
	}
	if p.last < 0 {
		p.fail(fmt.Errorf("%w: text needs a block to append to", ErrOutOfOrder))
		return p
	}
	b := &p.blocks[p.last]
	b.Content = append(b.Content, textNode(value))
	return p
}

// Marks applies marks, in order, to the last text run of the last block.
func (p *Post) Marks(marks ...Mark) *Post {
	if p.err != nil {
		return p
	}
	if p.last < 0 {
		p.fail(fmt.Errorf("%w: marks need a block", ErrOutOfOrder))
		return p
	}
	b := &p.blocks[p.last]
	if len(b.Content) == 0 {
		p.fail(fmt.Errorf("%w: marks need a text run in the last block", ErrOutOfOrder))
		return p
	}
	for _, m := range marks {
		if err := m.validate(); err != nil {
			p.fail(err)
			return p
		}
	}
	run := &b.Content[len(b.Content)-1]
	run.Marks = append(run.Marks, marks...)
	return p
}

// fill populates the last block following the content rules: plain text becomes one
// run, chunks become one run each followed by their marks, empty chunks are skipped.
func (p *Post) fill(contents []Content) *Post {
	for _, c := range contents {
		if p.err != nil {
			return p
		}
		if !c.isChunked() {
			p.Text(c.Text)
			continue
		}
		for _, chunk := range c.Chunks {
			if chunk.Content == "" {
				continue
			}
			marks, err := marksFromSpecs(chunk.Marks)
			if err != nil {
				p.fail(err)
				return p
			}
			p.Text(chunk.Content)
			if len(marks) > 0 {
				p.Marks(marks...)
			}
		}
	}
	return p
}
