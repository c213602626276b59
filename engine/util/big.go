package util

import "math/big"

// Shared small constant; treated as read-only.
var BigOne = big.NewInt(1)

// The binomial coefficient C(n, k). Returns zero for k outside [0, n].
func Binomial(n int, k int) *big.Int {
	if k < 0 || k > n {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}

// Raise base to a non-negative integer power.
func BigPow(base *big.Int, exp int) *big.Int {
	return new(big.Int).Exp(base, big.NewInt(int64(exp)), nil)
}

// The product of all the given weights. An empty argument list yields one.
func Product(ws ...*big.Int) *big.Int {
	res := big.NewInt(1)
	for _, w := range ws {
		res.Mul(res, w)
	}
	return res
}

// The greatest common divisor of all the given weights, ignoring zeros.
// Returns zero when every weight is zero.
func GCDAll(ws []*big.Int) *big.Int {
	res := new(big.Int)
	for _, w := range ws {
		res.GCD(nil, nil, res, new(big.Int).Abs(w))
	}
	return res
}
