// Package http contains the HTTP transport layer: Chi handlers that decode
// export requests, delegate to the export service and stream the resulting
// artifact back as an attachment download. All errors are rendered as
// RFC 7807 problem details.
package http
