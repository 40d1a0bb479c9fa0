package respond

// Canned pages are emitted directly as a single write and terminate
// the connection, bypassing the header serializer entirely.
// Content-Length below must match each body's byte length exactly.
var (
	Canned304 = []byte("HTTP/1.1 304 Not Modified\r\nContent-Length: 52\r\nConnection: close\r\nServer: aehttpd\r\n\r\n" +
		"<html><body><h1>304 Not Modified</h1></body></html>\n")

	Canned404 = []byte("HTTP/1.1 404 Not Found\r\nContent-Length: 54\r\nConnection: close\r\nServer: aehttpd\r\n\r\n" +
		"<html><body><h1>404 Page Not Found</h1></body></html>\n")

	Canned418 = []byte("HTTP/1.1 418 I'm a teapot\r\nContent-Length: 52\r\nConnection: close\r\nServer: aehttpd\r\n\r\n" +
		"<html><body><h1>418 I'm a teapot</h1></body></html>\n")

	Canned500 = []byte("HTTP/1.1 500 Internal Server Error\r\nContent-Length: 61\r\nConnection: close\r\nServer: aehttpd\r\n\r\n" +
		"<html><body><h1>500 Internal Server Error</h1></body></html>\n")
)

// CannedFor returns the canned page for a status code, if one exists.
func CannedFor(status int) ([]byte, bool) {
	switch status {
	case 304:
		return Canned304, true
	case 404:
		return Canned404, true
	case 418:
		return Canned418, true
	case 500:
		return Canned500, true
	default:
		return nil, false
	}
}
