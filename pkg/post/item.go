package post

import "fmt"

// Item describes one block declaratively. Only the fields relevant to Type are read.
//
//	- type: paragraph
//	  content:
//	    - content: bold
//	      marks: [{type: bold}]
//	    - content: " plain"
//	- type: captioned_image
//	  src: https://substackcdn.com/image/abc.png
//	  alt: A chart
type Item struct {
	Type    BlockKind  `yaml:"type" json:"type"`
	Content *Content   `yaml:"content,omitempty" json:"content,omitempty"`
	Level   int        `yaml:"level,omitempty" json:"level,omitempty"`
	Marks   []MarkSpec `yaml:"marks,omitempty" json:"marks,omitempty"`

	// captioned_image
	Src          string    `yaml:"src,omitempty" json:"src,omitempty"`
	Size         ImageSize `yaml:"size,omitempty" json:"size,omitempty"`
	Width        int       `yaml:"width,omitempty" json:"width,omitempty"`
	Height       int       `yaml:"height,omitempty" json:"height,omitempty"`
	ResizeWidth  int       `yaml:"resize_width,omitempty" json:"resize_width,omitempty"`
	Alt          string    `yaml:"alt,omitempty" json:"alt,omitempty"`
	Title        string    `yaml:"title,omitempty" json:"title,omitempty"`
	Href         string    `yaml:"href,omitempty" json:"href,omitempty"`
	BelowTheFold bool      `yaml:"below_the_fold,omitempty" json:"below_the_fold,omitempty"`

	// embed
	Provider EmbedKind `yaml:"provider,omitempty" json:"provider,omitempty"`
	ID       string    `yaml:"id,omitempty" json:"id,omitempty"`

	// subscribe_prompt
	Publication string `yaml:"publication,omitempty" json:"publication,omitempty"`
}

// Add appends the block described by item, fills its content and applies the
// block-level marks to the last run.
func (p *Post) Add(item Item) *Post {
	if p.err != nil {
		return p
	}
	var content []Content
	if item.Content != nil {
		content = append(content, *item.Content)
	}

	switch item.Type {
	case BlockParagraph:
		p.Paragraph(content...)
	case BlockHeading:
		level := item.Level
		if level == 0 {
			level = 1
		}
		p.Heading(level, content...)
	case BlockHorizontalRule:
		p.HorizontalRule().fill(content)
	case BlockCaptionedImage:
		p.Image(item.Src, item.imageOptions()...)
	case BlockEmbed:
		provider := item.Provider
		if provider == "" {
			provider = EmbedYouTube
		}
		id := item.ID
		if id == "" {
			id = item.Src
		}
		p.Embed(provider, id)
	case BlockSubscribePrompt:
		p.SubscribePrompt(item.Publication)
	default:
		p.fail(fmt.Errorf("%w: block type %q", ErrInvalidAttribute, item.Type))
		return p
	}

	if len(item.Marks) > 0 && p.err == nil {
		marks, err := marksFromSpecs(item.Marks)
		if err != nil {
			p.fail(err)
			return p
		}
		p.Marks(marks...)
	}
	return p
}

// AddAll adds each item in order.
func (p *Post) AddAll(items ...Item) *Post {
	for _, item := range items {
		p.Add(item)
	}
	return p
}

func (item Item) imageOptions() []ImageOption {
	var opts []ImageOption
	if item.Size != "" {
		opts = append(opts, ImageWithSize(item.Size))
	}
	if item.Width != 0 || item.Height != 0 {
		width, height := item.Width, item.Height
		if width == 0 {
			width = defaultImageWidth
		}
		if height == 0 {
			height = defaultImageHeight
		}
		opts = append(opts, ImageDimensions(width, height))
	}
	if item.ResizeWidth != 0 {
		opts = append(opts, ImageResizeWidth(item.ResizeWidth))
	}
	if item.Alt != "" {
		opts = append(opts, ImageAlt(item.Alt))
	}
	if item.Title != "" {
		opts = append(opts, ImageTitle(item.Title))
	}
	if item.Href != "" {
		opts = append(opts, ImageHref(item.Href))
	}
	if item.BelowTheFold {
		opts = append(opts, ImageBelowTheFold(true))
	}
	return opts
}
