package post

import "fmt"

// ImageSize controls how wide an image renders in the post.
type ImageSize string

const (
	ImageNormal ImageSize = "normal"
	ImageLarge  ImageSize = "large"
	ImageFull   ImageSize = "full"
)

const (
	defaultImageWidth       = 1456
	defaultImageHeight      = 819
	defaultImageResizeWidth = 728
)

// imageAttrs mirrors the editor's image2 node. Field order is part of the wire format.
type imageAttrs struct {
	Src              string    `json:"src"`
	Fullscreen       bool      `json:"fullscreen"`
	ImageSize        ImageSize `json:"imageSize"`
	Height           int       `json:"height"`
	Width            int       `json:"width"`
	ResizeWidth      int       `json:"resizeWidth"`
	Bytes            *int64    `json:"bytes"`
	Alt              *string   `json:"alt"`
	Title            *string   `json:"title"`
	Type             *string   `json:"type"`
	Href             *string   `json:"href"`
	BelowTheFold     bool      `json:"belowTheFold"`
	InternalRedirect *string   `json:"internalRedirect"`
}

// ImageOption adjusts the attributes of an image block.
type ImageOption func(*imageAttrs)

// ImageWithSize sets the rendered size. Defaults to [ImageNormal].
func ImageWithSize(size ImageSize) ImageOption {
	return func(a *imageAttrs) { a.ImageSize = size }
}

// ImageDimensions sets the pixel width and height. Defaults to 1456x819.
func ImageDimensions(width, height int) ImageOption {
	return func(a *imageAttrs) {
		a.Width = width
		a.Height = height
	}
}

// ImageResizeWidth sets the width the editor resizes to. Defaults to 728.
func ImageResizeWidth(width int) ImageOption {
	return func(a *imageAttrs) { a.ResizeWidth = width }
}

// ImageAlt sets the alternative text.
func ImageAlt(alt string) ImageOption {
	return func(a *imageAttrs) { a.Alt = &alt }
}

// ImageTitle sets the title text.
func ImageTitle(title string) ImageOption {
	return func(a *imageAttrs) { a.Title = &title }
}

// ImageHref makes the image link to href.
func ImageHref(href string) ImageOption {
	return func(a *imageAttrs) { a.Href = &href }
}

// ImageBelowTheFold marks the image as below the fold in email previews.
func ImageBelowTheFold(below bool) ImageOption {
	return func(a *imageAttrs) { a.BelowTheFold = below }
}

// ImageFullscreen enables the fullscreen viewer.
func ImageFullscreen(fullscreen bool) ImageOption {
	return func(a *imageAttrs) { a.Fullscreen = fullscreen }
}

// ImageBytes records the size of the hosted file.
func ImageBytes(n int64) ImageOption {
	return func(a *imageAttrs) { a.Bytes = &n }
}

// ImageType records the MIME type of the hosted file.
func ImageType(mime string) ImageOption {
	return func(a *imageAttrs) { a.Type = &mime }
}

// Image appends an image block. src must already be a hosted URL; see the
// client's image upload for local files.
func (p *Post) Image(src string, opts ...ImageOption) *Post {
	if p.err != nil {
		return p
	}
	attrs := imageAttrs{
		Src:         src,
		ImageSize:   ImageNormal,
		Height:      defaultImageHeight,
		Width:       defaultImageWidth,
		ResizeWidth: defaultImageResizeWidth,
	}
	for _, opt := range opts {
		opt(&attrs)
	}
	if err := attrs.validate(); err != nil {
		p.fail(err)
		return p
	}
	p.appendBlock(Node{Type: "image2", Attrs: mustAttrs(attrs)})
	return p
}

func (a imageAttrs) validate() error {
	if a.Src == "" {
		return fmt.Errorf("%w: image requires a src", ErrInvalidAttribute)
	}
	switch a.ImageSize {
	case ImageNormal, ImageLarge, ImageFull:
	default:
		return fmt.Errorf("%w: image size %q", ErrInvalidAttribute, a.ImageSize)
	}
	if a.Width < 0 || a.Height < 0 || a.ResizeWidth < 0 {
		return fmt.Errorf("%w: negative image dimensions", ErrInvalidAttribute)
	}
	return nil
}
