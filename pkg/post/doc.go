// Package post builds the rich-text draft documents understood by Substack's editor.
//
// A [Post] is assembled with a fluent interface: blocks are appended one after another
// and text runs and marks always land on the most recently appended block.
//
//	p := post.New("Weekly notes", "Things I read", 42).
//	    Heading(2, post.Plain("Links")).
//	    Paragraph().
//	    Text("Read this ").
//	    Text("article").
//	    Marks(post.Link("https://example.com"), post.Bold())
//
//	draft, err := p.Serialize()
//
// The same document can be described declaratively with [Item] values, which decode from
// YAML or JSON, and added with [Post.Add].
//
// Builder errors are sticky: the first failure is recorded, later calls are ignored and
// [Post.Err] or [Post.Serialize] report it. Ordering bugs, such as applying marks before
// any text exists, wrap [ErrOutOfOrder]; values outside an accepted set wrap
// [ErrInvalidAttribute].
//
// [Post.Serialize] produces the draft envelope sent to the drafts endpoint. The document
// body is embedded as a JSON-encoded string, which is what the service expects.
package post
