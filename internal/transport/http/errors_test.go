package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oshokin/httpreq/internal/transport"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error {
		return &url.Error{Op: "Get", URL: "http://example.com", Err: err}
	}

	tests := []struct {
		name string
		err  error
		want transport.ErrorCode
	}{
		{name: "header abort", err: fmt.Errorf("%w: line", errHeaderAborted), want: transport.CodeWriteError},
		{name: "redirects", err: wrap(fmt.Errorf("%w: 10", errTooManyRedirects)), want: transport.CodeTooManyRedirects},
		{name: "certificate", err: fmt.Errorf("%w: bad", errCertificate), want: transport.CodeSSLCertProblem},
		{name: "CA file", err: fmt.Errorf("%w: bad", errCAFile), want: transport.CodeSSLCACertBadFile},
		{name: "proxy", err: fmt.Errorf("%w: bad", errProxy), want: transport.CodeCouldNotResolveProxy},
		{
			name: "dns",
			err:  wrap(&net.OpError{Op: "dial", Err: &net.DNSError{Err: "no such host", Name: "x.invalid", IsNotFound: true}}),
			want: transport.CodeCouldNotResolveHost,
		},
		{name: "unknown authority", err: wrap(x509.UnknownAuthorityError{}), want: transport.CodePeerFailedVerify},
		{name: "hostname", err: wrap(x509.HostnameError{Host: "x"}), want: transport.CodePeerFailedVerify},
		{name: "verification", err: wrap(&tls.CertificateVerificationError{Err: errors.New("bad")}), want: transport.CodePeerFailedVerify},
		{name: "record header", err: wrap(tls.RecordHeaderError{Msg: "not TLS"}), want: transport.CodeSSLConnectError},
		{name: "remote alert", err: wrap(&net.OpError{Op: "remote error", Err: errors.New("tls: handshake failure")}), want: transport.CodeSSLConnectError},
		{name: "deadline", err: wrap(context.DeadlineExceeded), want: transport.CodeOperationTimedOut},
		{name: "canceled", err: wrap(context.Canceled), want: transport.CodeAbortedByCallback},
		{name: "eof", err: wrap(io.EOF), want: transport.CodeGotNothing},
		{name: "unexpected eof", err: wrap(io.ErrUnexpectedEOF), want: transport.CodeGotNothing},
		{name: "refused", err: wrap(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}), want: transport.CodeCouldNotConnect},
		{name: "reset", err: wrap(&net.OpError{Op: "read", Err: syscall.ECONNRESET}), want: transport.CodeRecvError},
		{name: "anything else", err: errors.New("boom"), want: transport.CodeSendError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}
