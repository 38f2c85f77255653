// Package report prints workflow outcomes. Successes go to the output
// writer, failures to the error writer and come back as a *Failure so the
// outermost caller can choose the exit status.
package report

import (
	"fmt"
	"io"
)

// Failure is returned by Reporter.Failure after the payload was printed.
type Failure struct {
	Message string
	// Err is the underlying cause, if any. It is not printed.
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap exposes the cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Reporter writes rendered payloads.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
}

// New returns a reporter writing successes to out and failures to errOut.
func New(out, errOut io.Writer) *Reporter {
	return &Reporter{out: out, errOut: errOut}
}

// Success prints payload to the output writer.
func (r *Reporter) Success(payload any) {
	fmt.Fprintln(r.out, render(payload))
}

// Failure prints payload to the error writer and returns it as an error
// wrapping cause.
func (r *Reporter) Failure(payload any, cause error) error {
	msg := render(payload)
	fmt.Fprintln(r.errOut, msg)
	return &Failure{Message: msg, Err: cause}
}

// render prints a structured result as its body and anything else as text.
func render(payload any) string {
	switch p := payload.(type) {
	case nil:
		return ""
	case string:
		return p
	case []byte:
		return string(p)
	case fmt.Stringer:
		return p.String()
	case error:
		return p.Error()
	default:
		return fmt.Sprint(p)
	}
}
