package models

// Archive is a parsed HTTP capture: the exchanges in capture order.
type Archive struct {
	Creator   string
	Exchanges []Exchange
}

// Exchange is one captured request/response pair.
// Missing fields in the capture are left empty.
type Exchange struct {
	Method   string
	URL      string
	MimeType string
	Body     string
}
