package xerrors

import (
	"errors"
	"fmt"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_Wrap(t *testing.T) {
	err := errors.New("base error")
	xerr0 := NewOrdinary("first xerror").Wrap(err)
	xerr1 := NewOrdinary("second xerror").Wrap(xerr0)

	//second xerror
	//	first xerror
	//	base error
	fmt.Println(xerr1)

	xerr0 = NewOrdinary("first xerror").Wrapf("initial error: %s", err.Error())
	xerr1 = NewOrdinary("second xerror").Wrap(xerr0)

	//second xerror
	//	first xerror
	//	initial error: base error
	fmt.Println(xerr1)
}

func Test_Contains(t *testing.T) {
	err := errors.New("base error")
	xerr0 := NewOrdinary("first xerror").Wrap(err)
	xerr1 := NewOrdinary("second xerror").Wrap(xerr0)
	xerrNotContained := NewOrdinary("third xerror").Wrap(err)

	require.True(t, xerr1.Contains(xerr0))
	require.False(t, xerr1.Contains(xerrNotContained))
}

func Test_Codes(t *testing.T) {
	xerr := ErrSlippage.Wrapf("min out %d, got %d", 10, 9)
	require.Equal(t, ErrCodeSlippage, xerr.Code())
	require.True(t, xerr.Equal(ErrSlippage))
	require.True(t, xerr.Contains(ErrSlippage))
	require.False(t, xerr.Contains(ErrCapExceeded))
	require.True(t, errors.Is(xerr, ErrSlippage))

	wrapped := ErrCurveExhausted.Wrap(ErrInvalidAmount)
	require.True(t, errors.Is(wrapped, ErrInvalidAmount))
	require.Equal(t, "curve exhausted\n\tinvalid amount", wrapped.Error())
}
