package roster

import "errors"

// Error kinds. Every error returned by the guard and mutator matches exactly
// one of these with errors.Is.
var (
	// ErrConfiguration is returned when the referenced team role is not configured.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnauthorized is returned when the actor may not manage the team's roster
	// or acts outside the management channel.
	ErrUnauthorized = errors.New("not authorized")

	// ErrIneligible is returned when the target lacks the gating role.
	ErrIneligible = errors.New("target not eligible")

	// ErrState is returned when membership preconditions do not hold.
	ErrState = errors.New("invalid membership state")

	// ErrTransport is returned when a membership source call fails.
	ErrTransport = errors.New("membership source call failed")
)

const genericFailure = "Something went wrong. Check bot permissions and role IDs."

// Error carries a kind, a user-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func transportError(message string, err error) *Error {
	return &Error{Kind: ErrTransport, Message: message, Err: err}
}

// UserMessage returns the explanation shown to the invoking user. Transport and
// unknown errors collapse into a generic message.
func UserMessage(err error) string {
	var re *Error
	if errors.As(err, &re) && !errors.Is(re.Kind, ErrTransport) {
		return re.Message
	}
	return genericFailure
}

// IsRejection reports whether err is a business-rule rejection, as opposed to
// a transport failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrIneligible) ||
		errors.Is(err, ErrState)
}
