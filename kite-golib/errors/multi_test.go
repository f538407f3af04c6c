package errors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendNil(t *testing.T) {
	err := New("error")
	errs := Append(nil, err)
	require.Equal(t, 1, errs.Len())
	require.Equal(t, err, errs.Slice()[0])

	errs = Append(errs, nil)
	require.Equal(t, 1, errs.Len())
}

func TestAppendFlattens(t *testing.T) {
	err0 := New("error0")
	err1 := New("error1")
	err2 := New("error2")

	var errs01 Errors
	errs01 = Append(errs01, err0)
	errs01 = Append(errs01, err1)

	errs := Append(Append(nil, err2), errs01).Slice()
	require.Equal(t, []error{err2, err0, err1}, errs)

	// the receiver is not mutated
	require.Equal(t, 2, errs01.Len())
}

func TestCombine(t *testing.T) {
	err0 := New("error0")
	err1 := New("error1")

	require.Nil(t, Combine(nil, nil))
	require.Equal(t, err0, Combine(err0, nil))
	require.Equal(t, err1, Combine(nil, err1))

	combined := Combine(err0, err1)
	require.Equal(t, []error{err0, err1}, combined.(Errors).Slice())
	require.Equal(t, "error0\nerror1", combined.Error())
}

func TestDefer(t *testing.T) {
	run := func() (err error) {
		defer Defer(&err, func() error { return io.ErrClosedPipe })
		return New("primary")
	}
	err := run()
	require.Error(t, err)
	require.Equal(t, 2, err.(Errors).Len())
}

func TestKinds(t *testing.T) {
	cfg := ConfigErrorf("data_add %d exceeds stream length %d", 100, 10)
	require.True(t, IsConfig(cfg))
	require.False(t, IsShape(cfg))
	require.Contains(t, cfg.Error(), "configuration error")

	wrapped := Wrapf(ShapeErrorf("3 != 4"), "evaluating round %d", 2)
	require.True(t, IsShape(wrapped))
	require.Equal(t, KindShape, KindOf(wrapped))

	require.Equal(t, Kind(0), KindOf(New("plain")))
	require.Nil(t, WrapfOrNil(nil, "ignored"))
}
