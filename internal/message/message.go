package message

// ClientAuth holds TLS client certificate settings. Empty paths mean "not configured".
type ClientAuth struct {
	// Certificate is the path to the client certificate.
	Certificate string
	// CertificatePassword unlocks an encrypted certificate.
	CertificatePassword string
	// Key is the path to the private key.
	Key string
	// KeyPassword unlocks an encrypted private key.
	KeyPassword string
}

// Message is the read-only view shared by requests and responses.
// Owners that need to mutate the headers or TLS settings keep the pointers
// they passed to New.
type Message struct {
	// headers is the header bag, possibly shared with the owner.
	headers *Headers
	// clientAuth is the TLS client authentication, possibly shared with the owner.
	clientAuth *ClientAuth
}

// New creates a message view over the given header bag and TLS settings.
// Nil arguments are replaced with empty values.
func New(headers *Headers, clientAuth *ClientAuth) Message {
	if headers == nil {
		headers = NewHeaders()
	}

	if clientAuth == nil {
		clientAuth = &ClientAuth{}
	}

	return Message{
		headers:    headers,
		clientAuth: clientAuth,
	}
}

// Header returns the first value of a header, or an empty string if it is absent.
func (m Message) Header(name string) string {
	if m.headers == nil {
		return ""
	}

	value, _ := m.headers.Get(name)

	return value
}

// HeaderValues returns every value of a header, or nil if it is absent.
func (m Message) HeaderValues(name string) []string {
	if m.headers == nil {
		return nil
	}

	return m.headers.Values(name)
}

// HasHeader reports whether a header is present.
func (m Message) HasHeader(name string) bool {
	return m.headers != nil && m.headers.Has(name)
}

// Headers returns a copy of the header bag.
func (m Message) Headers() *Headers {
	if m.headers == nil {
		return NewHeaders()
	}

	return m.headers.Clone()
}

// ContentType returns the Content-Type header, defaulting to ContentTypeForm.
func (m Message) ContentType() string {
	if value, ok := m.lookup(HeaderContentType); ok {
		return value
	}

	return ContentTypeForm
}

// ClientAuth returns a copy of the TLS client authentication settings.
func (m Message) ClientAuth() ClientAuth {
	if m.clientAuth == nil {
		return ClientAuth{}
	}

	return *m.clientAuth
}

// ClientCertificate returns the client certificate path.
func (m Message) ClientCertificate() string {
	return m.ClientAuth().Certificate
}

// ClientCertificatePassword returns the client certificate password.
func (m Message) ClientCertificatePassword() string {
	return m.ClientAuth().CertificatePassword
}

// ClientKey returns the client key path.
func (m Message) ClientKey() string {
	return m.ClientAuth().Key
}

// ClientKeyPassword returns the client key password.
func (m Message) ClientKeyPassword() string {
	return m.ClientAuth().KeyPassword
}

func (m Message) lookup(name string) (string, bool) {
	if m.headers == nil {
		return "", false
	}

	return m.headers.Get(name)
}
