// Package conversation defines the message types the memory engine consumes.
//
// A Message carries a role (user, assistant, system) and ordered content
// parts. Parts are either plain text or image references; image bytes are
// never decoded here, only handed to a completion provider for
// summarization.
//
// Messages in the wire format accepted by the HTTP API and CLI unmarshal
// directly into these types:
//
//	{"role": "user", "content": [{"type": "text", "text": "hello"}]}
package conversation
