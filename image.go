package substack

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
)

const imageDataPrefix = "data:image/jpeg;base64,"

// Image is an image hosted by Substack.
type Image struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	Bytes       int64  `json:"bytes,omitempty"`
	Width       int    `json:"imageWidth,omitempty"`
	Height      int    `json:"imageHeight,omitempty"`
}

func isLocalFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// UploadImage hosts an image on Substack. image is either a path to a local file,
// which is sent as a base64 data URI, or a URL that Substack fetches itself.
func (c *Client) UploadImage(ctx context.Context, image string) (*Image, error) {
	data := image
	if isLocalFile(image) {
		raw, err := os.ReadFile(image)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		data = imageDataPrefix + base64.StdEncoding.EncodeToString(raw)
	}

	u, err := c.publicationEndpoint("/image")
	if err != nil {
		return nil, err
	}
	var out Image
	if err := c.sendForm(ctx, u, url.Values{"image": {data}}, &out); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	c.log.Debug("uploaded image", "source", image, "url", out.URL)
	return &out, nil
}

// ResolveImage returns a URL usable as an image source: local files are uploaded
// and their hosted URL returned, anything else is returned unchanged.
func (c *Client) ResolveImage(ctx context.Context, src string) (string, error) {
	if !isLocalFile(src) {
		return src, nil
	}
	img, err := c.UploadImage(ctx, src)
	if err != nil {
		return "", err
	}
	return img.URL, nil
}
