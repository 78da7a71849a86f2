package post

import "encoding/json"

// Node is one element of the editor document tree as it appears on the wire.
//
// Attrs holds the already-encoded attribute object so that decoding and
// re-encoding a body keeps the field order the editor produced.
type Node struct {
	Type    string          `json:"type"`
	Attrs   json.RawMessage `json:"attrs,omitempty"`
	Content []Node          `json:"content,omitempty"`
	Text    *string         `json:"text,omitempty"`
	Marks   []Mark          `json:"marks,omitempty"`
}

// Document is the root of a draft body.
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

const docType = "doc"

// ParseBody decodes a draft_body string back into its document tree.
func ParseBody(body string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, err
	}
	if doc.Content == nil {
		doc.Content = []Node{}
	}
	return &doc, nil
}

// String encodes the document as the draft_body string.
func (d *Document) String() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func textNode(value string) Node {
	return Node{Type: "text", Text: &value}
}

func mustAttrs(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// attribute structs only hold strings, numbers and bools
		panic(err)
	}
	return b
}
