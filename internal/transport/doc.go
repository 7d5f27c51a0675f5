// Package transport defines the contract between request building and the engine
// that performs the network exchange.
//
// A Transfer describes one fully resolved exchange: URL, method marker, header lines,
// body source, response header callback and engine options. An Executor runs it and
// reports a Result carrying the status code, the body and a native error code.
// Native codes follow the well-known cURL numbering so that callers can classify
// failures without depending on a particular engine.
package transport
