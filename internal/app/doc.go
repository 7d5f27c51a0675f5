// Package app implements the httpreq commands.
// It turns command line options into a request built with the client facade,
// runs it and prints the response: an optional colored status line and
// headers, then the body, a JSON path extracted from it, or a file on disk.
package app
