// The [substack] package is a client for Substack's private HTTP API.
//
// # Authentication
//
// [New] authenticates either with a cookies file exported by a previous session
// ([Client.ExportCookies]) or with an email and password. Reusing cookies avoids the
// captcha Substack sometimes serves to fresh logins from cloud hosts.
//
// After authenticating, the client selects a publication: the one whose subdomain
// matches [Config.PublicationURL], or the user's primary publication. Publication
// scoped calls (drafts, images, subscriber counts) go to that publication's API.
// Use [Client.ChangePublication] to switch.
//
// # Drafts
//
// Draft bodies are built with [github.com/ma2za/substack.go/pkg/post]:
//
//	draft, err := post.New("Title", "Subtitle", userID).
//		Paragraph().Text("Hello").Marks(post.Bold()).
//		Serialize()
//	created, err := client.PostDraft(ctx, draft)
//	_, err = client.PublishDraft(ctx, created.ID, substack.PublishOptions{Send: true})
//
// # Errors
//
// Responses outside the 2xx range are returned as [*APIError]. Successful responses
// that are not JSON are returned as [*MalformedResponseError]. Nothing is retried.
//
// # Tools
//
// The [github.com/ma2za/substack.go/contrib] directory contains command line tools
// that are not covered by the package's backward compatibility guarantee.
package substack
