// Package bloglist is a sorted, doubly-linked list of blog records,
// published copy-on-write under the server's mutex. The node shape
// mirrors the linked-list pattern bakape/recache uses for its LRU
// list, adapted here to hold Record values instead of cache nodes.
package bloglist

import "time"

// Record is one blog post, with defaults already applied for any
// field missing from its on-disk JSON.
type Record struct {
	ID         int
	Heading    string
	SubHeading string
	Author     string
	AuthorLink string
	Timestamp  int64
	Content    string
}

// Defaults are substituted onto any Record field missing from the
// on-disk JSON.
var Defaults = Record{
	Heading:    "No Heading",
	SubHeading: "No Subheading",
	Author:     "guest",
	AuthorLink: "#",
	Timestamp:  1469227894,
	Content:    "~_~",
}

// Time returns the record's timestamp as a time.Time.
func (r Record) Time() time.Time { return time.Unix(r.Timestamp, 0).UTC() }

type node struct {
	next, prev *node
	rec        Record
}

// List is a doubly-linked list of Records, sorted by ID ascending. It
// is built fresh by the indexer and then only ever read — one List is
// never mutated after publication, so it needs no internal lock; the
// mutex lives one layer up, around the pointer that names the current
// List.
type List struct {
	front, back *node
	len         int
}

// New builds a List from records, which must already be sorted
// ascending by ID (the indexer sorts before calling this).
func New(records []Record) *List {
	l := &List{}
	for _, r := range records {
		n := &node{rec: r}
		if l.back == nil {
			l.front, l.back = n, n
		} else {
			l.back.next = n
			n.prev = l.back
			l.back = n
		}
		l.len++
	}
	return l
}

// Len returns the number of records.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return l.len
}

// Records returns the list contents as a slice, front to back (ID
// ascending).
func (l *List) Records() []Record {
	if l == nil {
		return nil
	}
	out := make([]Record, 0, l.len)
	for n := l.front; n != nil; n = n.next {
		out = append(out, n.rec)
	}
	return out
}

// Find returns the record with the given id, if present.
func (l *List) Find(id int) (Record, bool) {
	if l == nil {
		return Record{}, false
	}
	for n := l.front; n != nil; n = n.next {
		if n.rec.ID == id {
			return n.rec, true
		}
	}
	return Record{}, false
}
