// Package router implements a prefix-match trie: a byte-indexed trie
// over installed path prefixes, returning the deepest prefix that
// carries a payload.
package router

import "github.com/aehttpd/aehttpd/internal/reqctx"

// ParseFlags describes which optional parsing steps a route wants the
// request pipeline to perform before invoking its handler. Only six
// bits are ever meaningful, so a plain uint8 bitmask is used rather
// than a general-purpose bitmap type — see DESIGN.md for why
// kelindar/bitmap was rejected for this.
type ParseFlags uint8

const (
	ParseQuery ParseFlags = 1 << iota
	ParseIfModifiedSince
	ParseRange
	ParseAcceptEncoding
	ParseCookies
	ParsePostData
)

func (f ParseFlags) Has(bit ParseFlags) bool { return f&bit != 0 }

// Entry is one routing table row: a path prefix, the handler it maps
// to, and the parse-flag bitmask the handler wants applied.
type Entry struct {
	Prefix  string
	Handler reqctx.Handler
	Flags   ParseFlags
}

type trieNode struct {
	children [256]*trieNode
	entry    *Entry // set only at nodes that terminate an installed prefix
}

// Router is a prefix-match trie over installed path prefixes.
type Router struct {
	root *trieNode
}

// New returns an empty Router.
func New() *Router {
	return &Router{root: &trieNode{}}
}

// Insert installs prefix -> entry. Re-inserting the same prefix
// replaces its entry.
func (r *Router) Insert(prefix string, entry *Entry) {
	n := r.root
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if n.children[c] == nil {
			n.children[c] = &trieNode{}
		}
		n = n.children[c]
	}
	n.entry = entry
}

// LongestPrefixMatch walks the trie following the bytes of path,
// remembering the deepest node that carries a payload, and returns
// that payload once the walk can no longer extend. Returns nil if no
// installed prefix matches.
func (r *Router) LongestPrefixMatch(path string) *Entry {
	n := r.root
	var best *Entry
	if n.entry != nil {
		best = n.entry
	}

	for i := 0; i < len(path); i++ {
		next := n.children[path[i]]
		if next == nil {
			break
		}
		n = next
		if n.entry != nil {
			best = n.entry
		}
	}
	return best
}
