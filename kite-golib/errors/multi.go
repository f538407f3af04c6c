package errors

import "strings"

// Errors is a non-empty list of errors. A nil Errors means no error occurred.
type Errors interface {
	error
	// Slice returns a copy of the underlying errors.
	Slice() []error
	// Len is always > 0.
	Len() int
}

type errorSlice []error

func (m errorSlice) Slice() []error {
	return append([]error(nil), m...)
}

func (m errorSlice) Len() int {
	return len(m)
}

func (m errorSlice) Error() string {
	msgs := make([]string, 0, len(m))
	for _, err := range m {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Append appends the given (possibly nil) error to the given (possibly nil) Errors.
// Nested Errors values are flattened.
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}
	var out errorSlice
	if errs != nil {
		out = errorSlice(errs.Slice())
	}
	if nested, ok := err.(Errors); ok {
		return append(out, nested.Slice()...)
	}
	return append(out, err)
}

// Combine combines errors e & f into a single error, returning nil if both are nil.
func Combine(e, f error) error {
	switch {
	case e == nil:
		return f
	case f == nil:
		return e
	}
	var errs Errors
	errs = Append(errs, e)
	return Append(errs, f)
}

// Defer runs f and folds its error into *err. Typical use:
//
//   defer errors.Defer(&err, w.Close)
func Defer(err *error, f func() error) {
	*err = Combine(*err, f())
}
