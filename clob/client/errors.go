package client

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrNotEnoughBalance marks order rejections caused by the maker funds no
// longer being there: the position was sold or settled between the balance
// read and the order post. Callers treat this as already-resolved, not as a
// hard failure.
var ErrNotEnoughBalance = errors.New("not enough balance / allowance")

// IsNotEnoughBalance reports whether err is a balance/allowance rejection,
// either the local sentinel or the venue's error string.
func IsNotEnoughBalance(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotEnoughBalance) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not enough balance") || strings.Contains(msg, "allowance")
}
