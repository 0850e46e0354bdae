// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Handlers use these helpers instead of writing raw http.ResponseWriter
// calls so that JSON formatting and error envelopes stay consistent. The
// error envelope follows the Mailchimp problem-detail shape, which keeps
// the stub API's responses parseable by the real remote client.
package httputil
