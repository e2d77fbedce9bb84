package services

// ErrorKind classifies a business rule failure.
type ErrorKind int

const (
	KindInvalidArgument ErrorKind = iota
	KindDuplicateKey
	KindNotFound
)

const (
	msgLineNumberExists = "Line number already exists"
	msgNotFound         = "Not found"
)

// Error is a business rule failure. It carries no HTTP status; the API layer
// derives one from Message, so a failure that should read as a conflict must
// say "already exists".
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Kind so callers can use errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Targets for errors.Is. The service returns fresh copies, so changing a
// returned failure never affects these.
var (
	ErrDuplicateKey = &Error{Kind: KindDuplicateKey, Message: msgLineNumberExists}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: msgNotFound}
)

func duplicateKey() *Error {
	return &Error{Kind: KindDuplicateKey, Message: msgLineNumberExists}
}

func notFound() *Error {
	return &Error{Kind: KindNotFound, Message: msgNotFound}
}

// InvalidArgument builds a failure for caller supplied input the service
// cannot act on.
func InvalidArgument(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}
