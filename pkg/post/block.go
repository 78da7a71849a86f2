package post

import (
	"fmt"

	"github.com/ma2za/substack.go/pkg/constants"
)

// BlockKind enumerates the top-level blocks a post body can hold.
type BlockKind string

const (
	BlockParagraph       BlockKind = "paragraph"
	BlockHeading         BlockKind = "heading"
	BlockHorizontalRule  BlockKind = "horizontal_rule"
	BlockCaptionedImage  BlockKind = "captioned_image"
	BlockEmbed           BlockKind = "embed"
	BlockSubscribePrompt BlockKind = "subscribe_prompt"
)

// EmbedKind enumerates the supported embed providers.
type EmbedKind string

const (
	EmbedYouTube EmbedKind = "youtube"
)

const (
	maxHeadingLevel = 6

	subscribeText = "Subscribe"
)

type headingAttrs struct {
	Level int `json:"level"`
}

type youtubeAttrs struct {
	VideoID string `json:"videoId"`
}

type subscribeAttrs struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

func (p *Post) appendBlock(n Node) {
	p.blocks = append(p.blocks, n)
	p.last = len(p.blocks) - 1
}

// Paragraph appends a paragraph, filled with content when given.
func (p *Post) Paragraph(content ...Content) *Post {
	if p.err != nil {
		return p
	}
	p.appendBlock(Node{Type: string(BlockParagraph)})
	return p.fill(content)
}

// Heading appends a heading of the given level (1 to 6), filled with content when given.
func (p *Post) Heading(level int, content ...Content) *Post {
	if p.err != nil {
		return p
	}
	if level < 1 || level > maxHeadingLevel {
		p.fail(fmt.Errorf("%w: heading level %d", ErrInvalidAttribute, level))
		return p
	}
	p.appendBlock(Node{
		Type:  string(BlockHeading),
		Attrs: mustAttrs(headingAttrs{Level: level}),
	})
	return p.fill(content)
}

// HorizontalRule appends a divider.
func (p *Post) HorizontalRule() *Post {
	if p.err != nil {
		return p
	}
	p.appendBlock(Node{Type: string(BlockHorizontalRule)})
	return p
}

// Embed appends an embedded media block from the given provider.
func (p *Post) Embed(kind EmbedKind, externalID string) *Post {
	if p.err != nil {
		return p
	}
	if externalID == "" {
		p.fail(fmt.Errorf("%w: embed requires an id", ErrInvalidAttribute))
		return p
	}
	switch kind {
	case EmbedYouTube:
		p.appendBlock(Node{
			Type:  "youtube2",
			Attrs: mustAttrs(youtubeAttrs{VideoID: externalID}),
		})
	default:
		p.fail(fmt.Errorf("%w: embed provider %q", ErrInvalidAttribute, kind))
	}
	return p
}

// YouTube appends a YouTube video embed.
func (p *Post) YouTube(videoID string) *Post {
	return p.Embed(EmbedYouTube, videoID)
}

// SubscribePrompt appends a subscribe button whose caption names the publication.
func (p *Post) SubscribePrompt(publicationName string) *Post {
	if p.err != nil {
		return p
	}
	p.appendBlock(Node{
		Type:  "subscribeWidget",
		Attrs: mustAttrs(subscribeAttrs{URL: constants.CheckoutURL, Text: subscribeText}),
		Content: []Node{{
			Type:    "ctaCaption",
			Content: []Node{textNode(subscribeCaption(publicationName))},
		}},
	})
	return p
}

func subscribeCaption(publicationName string) string {
	if publicationName == "" {
		publicationName = "this newsletter"
	}
	return fmt.Sprintf("Thanks for reading %s! Subscribe for free to receive new posts and support my work.", publicationName)
}

// RemoveLastBlock discards the most recently appended block.
func (p *Post) RemoveLastBlock() *Post {
	if p.err != nil {
		return p
	}
	if p.last < 0 {
		p.fail(fmt.Errorf("%w: no block to remove", ErrOutOfOrder))
		return p
	}
	p.blocks[p.last] = Node{}
	p.blocks = p.blocks[:p.last]
	p.last--
	return p
}
