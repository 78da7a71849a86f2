package substackpost

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ma2za/substack.go/pkg/post"
)

// PostFile is the YAML document describing a draft.
//
//	title: Weekly notes
//	subtitle: Things I read
//	audience: everyone
//	body:
//	  - type: heading
//	    level: 2
//	    content: Links
//	  - type: paragraph
//	    content: Hello
//	  - type: captioned_image
//	    src: ./chart.jpg
//
// body may also be a mapping, in which case its values are used in document order.
type PostFile struct {
	Title              string        `yaml:"title"`
	Subtitle           string        `yaml:"subtitle"`
	Audience           post.Audience `yaml:"audience"`
	CommentPermissions post.Audience `yaml:"comment_permissions"`
	Body               Body          `yaml:"body"`

	// dir is the directory of the file, relative image paths resolve against it.
	dir string
}

// Body is the ordered list of blocks of a post file.
type Body []post.Item

func (b *Body) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []post.Item
		if err := value.Decode(&items); err != nil {
			return err
		}
		*b = items
	case yaml.MappingNode:
		items := make([]post.Item, 0, len(value.Content)/2)
		for i := 1; i < len(value.Content); i += 2 {
			var item post.Item
			if err := value.Content[i].Decode(&item); err != nil {
				return err
			}
			items = append(items, item)
		}
		*b = items
	default:
		return fmt.Errorf("line %d: body must be a list or a mapping of blocks", value.Line)
	}
	return nil
}

// ReadPostFile parses the post file at path.
func ReadPostFile(path string) (*PostFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read post file: %w", err)
	}
	var f PostFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse post file: %w", err)
	}
	f.dir = filepath.Dir(path)
	return &f, nil
}

// Options returns the post options set by the file.
func (f *PostFile) Options() []post.Option {
	var opts []post.Option
	if f.Audience != "" {
		opts = append(opts, post.WithAudience(f.Audience))
	}
	if f.CommentPermissions != "" {
		opts = append(opts, post.WithCommentPermissions(f.CommentPermissions))
	}
	return opts
}

// localPath maps an image source to a path on disk, or returns "" for URLs.
func (f *PostFile) localPath(src string) string {
	if src == "" || strings.Contains(src, "://") || strings.HasPrefix(src, "data:") {
		return ""
	}
	if filepath.IsAbs(src) || f.dir == "" {
		return src
	}
	return filepath.Join(f.dir, src)
}
