// Package protocol decodes the line-oriented tagged messages carried by a task's event stream.
//
// Each message line is classified into exactly one [Kind] using a fixed priority order
// (first match wins):
//
//	SCRIPT_FINISHED   exact      → [Finished]
//	STATUS:<text>     prefix     → [StatusChunk]
//	STATUS_END        prefix     → [StatusFlush]
//	ERROR:<text>      prefix     → [ErrorChunk]   (enters the error section)
//	ERROR_END         prefix     → [ErrorFlush]   (leaves the error section)
//	FILE:<path>       prefix     → [FileReady]
//	BUTTONS:<html>    prefix     → [ButtonsReady]
//	anything else                → [UntaggedChunk]
//
// Payloads are trimmed of surrounding whitespace. Untagged lines belong to whichever
// section is open: the [Decoder] carries the in-error-section flag between lines so
// continuation text lands in the error buffer until ERROR_END.
package protocol
