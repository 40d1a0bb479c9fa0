// Package respond assembles the status line, headers, and up to three
// body segments into a scatter/gather write vector.
package respond

// Segment is one body part: either bytes owned by this response
// alone, or bytes borrowed from a cache blob that outlives the
// response and must never be freed by it. The writer treats both the
// same way; only Owned segments are ever allocated specifically for
// this response.
type Segment struct {
	bytes   []byte
	owned   bool
}

// Owned wraps a buffer allocated for this response only.
func Owned(b []byte) Segment { return Segment{bytes: b, owned: true} }

// Borrowed wraps bytes living in the content cache. Go's garbage
// collector makes the "never freed by the response" guarantee
// automatic; this constructor exists to document the ownership
// distinction, not to manage a manual free.
func Borrowed(b []byte) Segment { return Segment{bytes: b, owned: false} }

// Bytes returns the segment's content.
func (s Segment) Bytes() []byte { return s.bytes }

// Empty reports whether the segment carries no bytes (and so should
// be omitted from the write vector).
func (s Segment) Empty() bool { return len(s.bytes) == 0 }
