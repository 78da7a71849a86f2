// Package contrib provides command line tools and helpers built on the
// Substack Go client.
//
// Note that this package is outside of the backward compatibility guarantees
// provided by the core client. Changes to this package may introduce breaking
// changes without following semantic versioning.
//
// [github.com/ma2za/substack.go/contrib/substackenv] resolves credentials from a
// TOML settings file, .env files and the environment. On top of it,
// [github.com/ma2za/substack.go/contrib/substackpost] turns a YAML post file into a
// draft and optionally publishes or schedules it, and
// [github.com/ma2za/substack.go/contrib/substackstats] prints the subscriber count,
// drafts and published posts of a publication.
package contrib
