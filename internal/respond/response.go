package respond

import (
	"errors"

	"github.com/aehttpd/aehttpd/internal/numfmt"
)

const scratchCapacity = 512

// ErrHeaderOverflow signals the 512-byte scratch buffer couldn't hold
// the serialized header block; the caller turns this into a canned
// 500 response.
var ErrHeaderOverflow = errors.New("respond: header block exceeds scratch buffer")

var statusText = map[int]string{
	200: "OK",
	304: "Not Modified",
	404: "Not Found",
	418: "I'm a teapot",
	500: "Internal Server Error",
}

func reasonPhrase(code int) string {
	if s, ok := statusText[code]; ok {
		return s
	}
	return "Unknown"
}

// headerKV is one accumulated response header. Key already carries the
// leading CRLF and trailing ": " (AddHeader adds them), so the
// serializer copies each pair as is instead of reformatting it.
type headerKV struct {
	key   string
	value string
}

// Response is the unassembled response half of a connection: status,
// MIME type, up to three borrowed/owned body segments, and the
// accumulated header list.
type Response struct {
	Status int
	MIME   string

	Head Segment
	Main Segment
	Foot Segment

	headers []headerKV
	scratch [scratchCapacity]byte
}

// Reset clears a Response for reuse across connections on the same
// worker (avoids reallocating the scratch array per request).
func (r *Response) Reset() {
	r.Status = 0
	r.MIME = ""
	r.Head, r.Main, r.Foot = Segment{}, Segment{}, Segment{}
	r.headers = r.headers[:0]
}

// AddHeader appends one response header. key is stored with a CRLF
// prefix and ": " suffix added.
func (r *Response) AddHeader(key, value string) {
	r.headers = append(r.headers, headerKV{key: "\r\n" + key + ": ", value: value})
}

func (r *Response) bodyLen() int {
	return len(r.Head.Bytes()) + len(r.Main.Bytes()) + len(r.Foot.Bytes())
}

// Assemble serializes the status line and headers into the response's
// scratch buffer and returns the write vector: header block, then
// whichever of Head/Main/Foot are present, in that order. The vector
// has 1 + count(present segments) elements.
func (r *Response) Assemble() ([][]byte, error) {
	var local [scratchCapacity]byte
	buf := local[:0]

	buf = append(buf, "HTTP/1.1 "...)
	buf = numfmt.AppendUint(buf, uint64(r.Status))
	buf = append(buf, ' ')
	buf = append(buf, reasonPhrase(r.Status)...)

	if r.Status >= 200 && r.Status < 300 {
		buf = append(buf, "\r\nContent-Length: "...)
		buf = numfmt.AppendUint(buf, uint64(r.bodyLen()))
		buf = append(buf, "\r\nContent-Type: "...)
		buf = append(buf, r.MIME...)
	}

	for _, h := range r.headers {
		buf = append(buf, h.key...)
		buf = append(buf, h.value...)
	}

	buf = append(buf, "\r\nConnection: close"...)
	buf = append(buf, "\r\nServer: aehttpd"...)
	buf = append(buf, "\r\n\r\n"...)

	if len(buf) > scratchCapacity {
		return nil, ErrHeaderOverflow
	}
	n := copy(r.scratch[:], buf)
	header := r.scratch[:n]

	vec := make([][]byte, 0, 4)
	vec = append(vec, header)
	for _, seg := range []Segment{r.Head, r.Main, r.Foot} {
		if !seg.Empty() {
			vec = append(vec, seg.Bytes())
		}
	}
	return vec, nil
}
