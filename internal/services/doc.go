// Package services talks to the task backend over HTTP.
//
// # Event Stream
//
// [Client.Stream] issues GET <base><stream_path>?p=<partition>&u=<target> with
// Accept: text/event-stream and returns a [Stream]. A reader goroutine decodes the
// event-stream framing:
//
//   - "data:" fields accumulate, joined with a line break
//   - a blank line dispatches the event
//   - "event:" and "id:" fields are kept; lines starting with ":" are comments
//   - only events of type "message" are delivered
//
// The stream has no completion signal of its own. A server that closes the connection,
// or a read error, ends the stream with [shared.ErrStreamFailed]; [Stream.Close] ends it
// with [shared.ErrStreamClosed]. The caller decides completion from the message content.
//
// # Downloads
//
// Produced files live at <download_path>/<subdir>/<name>. [FetchDownloader] saves them
// into a local directory; [BrowserDownloader] hands the URL to the system browser.
//
// # Error Handling
//
//   - [shared.ErrUnexpectedStatus] : the backend answered with a non-2xx status
//   - [shared.ErrStreamFailed] : transport failure or premature end of stream
//   - [shared.ErrStreamClosed] : the stream was closed locally
//   - [shared.ErrInvalidArgument] : a download without a file name
package services
