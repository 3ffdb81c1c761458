// Package page fetches the documents the extractor works on: the watch page,
// its JSON fallback form and the player script referenced by the page.
//
// Responses are decoded according to Content-Encoding (gzip, br, deflate,
// bzip2) since the underlying transport leaves compression to the caller.
package page
