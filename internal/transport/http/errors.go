package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/oshokin/httpreq/internal/transport"
)

// Static error definitions for better error handling.
var (
	// errTooManyRedirects indicates that the redirect limit was exceeded.
	errTooManyRedirects = errors.New("maximum redirects followed")
	// errProxy indicates an unusable proxy URL.
	errProxy = errors.New("invalid proxy URL")
	// errHeaderAborted indicates that the header callback rejected a line.
	errHeaderAborted = errors.New("header callback aborted the transfer")
)

// classifyError maps a Go error raised during a transfer onto a native error code.
//
//nolint:cyclop // A flat list of checks reads best here.
func classifyError(err error) transport.ErrorCode {
	var (
		dnsErr          *net.DNSError
		verifyErr       *tls.CertificateVerificationError
		unknownAuthErr  x509.UnknownAuthorityError
		hostnameErr     x509.HostnameError
		invalidCertErr  x509.CertificateInvalidError
		recordHeaderErr tls.RecordHeaderError
		netErr          net.Error
		opErr           *net.OpError
	)

	switch {
	case errors.Is(err, errHeaderAborted):
		return transport.CodeWriteError
	case errors.Is(err, errTooManyRedirects):
		return transport.CodeTooManyRedirects
	case errors.Is(err, errCertificate):
		return transport.CodeSSLCertProblem
	case errors.Is(err, errCAFile):
		return transport.CodeSSLCACertBadFile
	case errors.Is(err, errProxy):
		return transport.CodeCouldNotResolveProxy
	case errors.As(err, &dnsErr):
		return transport.CodeCouldNotResolveHost
	case errors.As(err, &verifyErr),
		errors.As(err, &unknownAuthErr),
		errors.As(err, &hostnameErr),
		errors.As(err, &invalidCertErr):
		return transport.CodePeerFailedVerify
	case errors.As(err, &recordHeaderErr),
		errors.As(err, &opErr) && (opErr.Op == "remote error" || opErr.Op == "local error"):
		return transport.CodeSSLConnectError
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return transport.CodeOperationTimedOut
	case errors.Is(err, context.Canceled):
		return transport.CodeAbortedByCallback
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return transport.CodeGotNothing
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.As(err, &opErr) && opErr.Op == "dial":
		return transport.CodeCouldNotConnect
	case errors.Is(err, syscall.ECONNRESET):
		return transport.CodeRecvError
	default:
		return transport.CodeSendError
	}
}
