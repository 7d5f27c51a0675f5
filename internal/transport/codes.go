package transport

import "strconv"

// ErrorCode is a native transfer error code. Zero means no transport-level error.
type ErrorCode int

// Native error codes.
const (
	CodeOK                   ErrorCode = 0
	CodeUnsupportedProtocol  ErrorCode = 1
	CodeFailedInit           ErrorCode = 2
	CodeURLMalformat         ErrorCode = 3
	CodeCouldNotResolveProxy ErrorCode = 5
	CodeCouldNotResolveHost  ErrorCode = 6
	CodeCouldNotConnect      ErrorCode = 7
	CodeHTTPReturnedError    ErrorCode = 22
	CodeWriteError           ErrorCode = 23
	CodeReadError            ErrorCode = 26
	CodeOperationTimedOut    ErrorCode = 28
	CodeSSLConnectError      ErrorCode = 35
	CodeAbortedByCallback    ErrorCode = 42
	CodeTooManyRedirects     ErrorCode = 47
	CodeGotNothing           ErrorCode = 52
	CodeSSLEngineNotFound    ErrorCode = 53
	CodeSSLEngineSetFailed   ErrorCode = 54
	CodeSendError            ErrorCode = 55
	CodeRecvError            ErrorCode = 56
	CodeSSLCertProblem       ErrorCode = 58
	CodeSSLCipher            ErrorCode = 59
	CodePeerFailedVerify     ErrorCode = 60
	CodeSSLCACertBadFile     ErrorCode = 77
	CodeSSLPinnedPubKeyMatch ErrorCode = 90
)

//nolint:gochecknoglobals // Immutable lookup table.
var codeNames = map[ErrorCode]string{
	CodeOK:                   "no error",
	CodeUnsupportedProtocol:  "unsupported protocol",
	CodeFailedInit:           "failed initialization",
	CodeURLMalformat:         "malformed URL",
	CodeCouldNotResolveProxy: "couldn't resolve proxy",
	CodeCouldNotResolveHost:  "couldn't resolve host",
	CodeCouldNotConnect:      "couldn't connect to server",
	CodeHTTPReturnedError:    "HTTP returned an error",
	CodeWriteError:           "failed writing received data",
	CodeReadError:            "failed reading upload data",
	CodeOperationTimedOut:    "operation timed out",
	CodeSSLConnectError:      "SSL connect error",
	CodeAbortedByCallback:    "operation aborted",
	CodeTooManyRedirects:     "too many redirects",
	CodeGotNothing:           "server returned nothing",
	CodeSSLEngineNotFound:    "SSL crypto engine not found",
	CodeSSLEngineSetFailed:   "can not set SSL crypto engine as default",
	CodeSendError:            "failed sending data to the peer",
	CodeRecvError:            "failure when receiving data from the peer",
	CodeSSLCertProblem:       "problem with the local SSL certificate",
	CodeSSLCipher:            "couldn't use specified SSL cipher",
	CodePeerFailedVerify:     "SSL peer certificate or SSH remote key was not OK",
	CodeSSLCACertBadFile:     "problem with the SSL CA cert",
	CodeSSLPinnedPubKeyMatch: "SSL public key does not match pinned public key",
}

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "error code " + strconv.Itoa(int(c))
}
