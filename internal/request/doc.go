// Package request builds HTTP requests fluently, executes them through a
// transport.Executor and classifies the outcome.
//
// A Request accumulates a method, a query-free URL, query parameters,
// headers, a body and engine options. Run resolves all of it into a single
// transport.Transfer: streams and multipart encoders are uploaded
// incrementally, any other body is encoded according to its content type.
// Every HTTP error status is handed to the engine as non-fatal, so the
// decision between success, ResponseError and the transport error kinds is
// made here, after the exchange completes.
package request
