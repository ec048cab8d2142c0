package ledger

import "github.com/holiman/uint256"

// MaxBalance is the largest representable balance or allowance.
var MaxBalance = new(uint256.Int).SetAllOne()

func checkedAdd(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func checkedSub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrArithmeticUnderflow
	}
	return z, nil
}

// orZero returns a copy of v, or zero when v is nil.
func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}
