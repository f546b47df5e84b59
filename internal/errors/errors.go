package errors

import "fmt"

// ErrorCode represents a reldraft error code.
type ErrorCode string

const (
	ErrNoReleasesFound        ErrorCode = "NO_RELEASES_FOUND"        // no release tag survived filtering
	ErrMalformedTag           ErrorCode = "MALFORMED_TAG"            // release tag suffix is not a version
	ErrUnsupportedChannel     ErrorCode = "UNSUPPORTED_CHANNEL"      // channel outside the policy's case table
	ErrInvalidPreviousVersion ErrorCode = "INVALID_PREVIOUS_VERSION" // previous version shape incompatible with channel
	ErrUnparsableLogLine      ErrorCode = "UNPARSABLE_LOG_LINE"      // commit subject does not match the entry convention
	ErrUncommittedChanges     ErrorCode = "UNCOMMITTED_CHANGES"      // working tree is dirty
	ErrInvalidChannelArgument ErrorCode = "INVALID_CHANNEL_ARGUMENT" // user-supplied channel token is unknown
	ErrInvalidRequest         ErrorCode = "INVALID_REQUEST"          // 400
	ErrGit                    ErrorCode = "GIT"                      // git binary invocation failed
	ErrInternal               ErrorCode = "INTERNAL"                 // 500
)

// DraftError represents a structured error with code, status, and details.
// All reldraft errors are fatal to the invocation; nothing is retried.
type DraftError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *DraftError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNoReleasesFound creates an error for when no release tag survives filtering.
func NewNoReleasesFound(excludeBeta bool) *DraftError {
	return &DraftError{
		Code:    ErrNoReleasesFound,
		Status:  404,
		Message: "no release tags found; cannot establish a baseline version",
		Details: map[string]any{"exclude_beta": excludeBeta},
	}
}

// NewMalformedTag creates an error carrying the offending tag text.
func NewMalformedTag(tag string) *DraftError {
	return &DraftError{
		Code:    ErrMalformedTag,
		Status:  422,
		Message: fmt.Sprintf("release tag %q does not carry a valid version", tag),
		Details: map[string]any{"tag": tag},
	}
}

// NewUnsupportedChannel creates an error for a channel the policy cannot advance.
func NewUnsupportedChannel(channel string) *DraftError {
	return &DraftError{
		Code:    ErrUnsupportedChannel,
		Status:  422,
		Message: fmt.Sprintf("no version progression rule for channel %q", channel),
		Details: map[string]any{"channel": channel},
	}
}

// NewInvalidPreviousVersion creates an error for a previous version whose shape
// is inconsistent with the requested channel transition.
func NewInvalidPreviousVersion(version, channel string) *DraftError {
	return &DraftError{
		Code:    ErrInvalidPreviousVersion,
		Status:  422,
		Message: fmt.Sprintf("previous version %q cannot be advanced by %s rules", version, channel),
		Details: map[string]any{"version": version, "channel": channel},
	}
}

// NewUnparsableLogLine creates an error carrying the offending log line.
func NewUnparsableLogLine(line string) *DraftError {
	return &DraftError{
		Code:    ErrUnparsableLogLine,
		Status:  422,
		Message: fmt.Sprintf("commit subject %q does not match the changelog convention", line),
		Details: map[string]any{"line": line},
	}
}

// NewUncommittedChanges creates an error for a dirty working tree.
func NewUncommittedChanges() *DraftError {
	return &DraftError{
		Code:    ErrUncommittedChanges,
		Status:  409,
		Message: "working tree has uncommitted changes; commit or stash before drafting",
	}
}

// NewInvalidChannelArgument creates an error carrying the offending channel token.
func NewInvalidChannelArgument(value string) *DraftError {
	return &DraftError{
		Code:    ErrInvalidChannelArgument,
		Status:  400,
		Message: fmt.Sprintf("unknown channel %q; expected production, beta, or test", value),
		Details: map[string]any{"channel": value},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *DraftError {
	return &DraftError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewGit creates an error for a failed git invocation.
func NewGit(op string, err error) *DraftError {
	return &DraftError{
		Code:    ErrGit,
		Status:  500,
		Message: fmt.Sprintf("git %s: %v", op, err),
		Details: map[string]any{"op": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *DraftError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &DraftError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a DraftError with the given code.
func Is(err error, code ErrorCode) bool {
	if dErr, ok := err.(*DraftError); ok {
		return dErr.Code == code
	}
	return false
}
