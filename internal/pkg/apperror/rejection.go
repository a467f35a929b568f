package apperror

import "errors"

// Kind groups rejections for callers that map them onto a transport status.
type Kind string

const (
	KindPrecondition Kind = "precondition" // state does not allow the operation
	KindPolicy       Kind = "policy"       // input violates a business rule
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
)

// Rejection is a recoverable refusal with a stable code and a message that
// can be shown to the user as is.
type Rejection struct {
	Code    string
	Kind    Kind
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func NewPrecondition(code, message string) *Rejection {
	return &Rejection{Code: code, Kind: KindPrecondition, Message: message}
}

func NewPolicy(code, message string) *Rejection {
	return &Rejection{Code: code, Kind: KindPolicy, Message: message}
}

func NewNotFound(code, message string) *Rejection {
	return &Rejection{Code: code, Kind: KindNotFound, Message: message}
}

func NewForbidden(code, message string) *Rejection {
	return &Rejection{Code: code, Kind: KindForbidden, Message: message}
}

// AsRejection returns the first Rejection in err's chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// IsRejection reports whether err is, or wraps, a Rejection.
func IsRejection(err error) bool {
	_, ok := AsRejection(err)
	return ok
}
