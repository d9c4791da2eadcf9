package mpc

import (
	"fmt"
	"io"

	"dcf-retrieval/bitvec"
	"dcf-retrieval/dcf"
	"dcf-retrieval/group"
	"dcf-retrieval/prg"
)

// cmpWidth is the bit width of the masked value Cmp's two DCFs straddle.
// Cmp answers its comparison over the whole field via modular masking, not
// an arbitrary ring, so this is fixed to cover every field element.
const cmpWidth = 64

// CmpKey is one party's share of the correlated randomness behind a single
// Cmp evaluation: a share of the additive mask r, a share of the wrap bit w
// that masking the two public thresholds by r implies, and the two
// straddling DCF keys.
type CmpKey struct {
	Party   uint8
	RShare  group.Element
	WShare  group.Element
	DCFLow  dcf.Key
	DCFHigh dcf.Key
}

// CmpDealer deals one Cmp instance testing interval membership xL <= x < xR
// for public thresholds xL <= xR, against an additively shared x.
//
// The construction masks both thresholds by a fresh r: xL' = xL+r, xR' =
// xR+r (mod p), and records whether that masking wrapped the low threshold
// past the high one (xL' > xR'). Gen builds two LessThan DCFs straddling
// the masked thresholds, one paying out p-1 below xL' and the other paying
// out 1 below xR'; summing their outputs with the dealt wrap bit recovers
// the interval indicator once Eval reveals the masked value — the same
// two-DCF straddling shape original_source/src/cmp.c builds (xl_p/xr_p
// masked reveals, one LessThan DCF per threshold), expressed over this
// module's field instead of that driver's raw ring arithmetic.
func CmpDealer(xL, xR uint64, ctx *prg.Context, csprng io.Reader) (CmpKey, CmpKey, error) {
	if xL > xR {
		return CmpKey{}, CmpKey{}, fmt.Errorf("mpc: cmp dealer: xL must be <= xR, got xL=%d xR=%d", xL, xR)
	}

	r, err := randomElement(csprng)
	if err != nil {
		return CmpKey{}, CmpKey{}, fmt.Errorf("mpc: cmp dealer: %w", err)
	}

	xLPrime := group.Add(group.FromUint64(xL), r).Uint64()
	xRPrime := group.Add(group.FromUint64(xR), r).Uint64()

	w := uint64(0)
	if xLPrime > xRPrime {
		w = 1
	}

	r0, err := randomElement(csprng)
	if err != nil {
		return CmpKey{}, CmpKey{}, fmt.Errorf("mpc: cmp dealer: %w", err)
	}
	r1 := group.Sub(r, r0)

	w0, err := randomElement(csprng)
	if err != nil {
		return CmpKey{}, CmpKey{}, fmt.Errorf("mpc: cmp dealer: %w", err)
	}
	w1 := group.Sub(group.FromUint64(w), w0)

	alphaLow, err := bitvec.FromUint64(xLPrime, cmpWidth)
	if err != nil {
		return CmpKey{}, CmpKey{}, fmt.Errorf("mpc: cmp dealer: %w", err)
	}
	alphaHigh, err := bitvec.FromUint64(xRPrime, cmpWidth)
	if err != nil {
		return CmpKey{}, CmpKey{}, fmt.Errorf("mpc: cmp dealer: %w", err)
	}

	lowCF := dcf.CmpFunc{Point: dcf.Point{Alpha: alphaLow, Beta: group.FromUint64(group.P - 1)}, Dir: dcf.LessThan}
	lowK0, lowK1, err := dcf.Gen(lowCF, ctx, csprng)
	if err != nil {
		return CmpKey{}, CmpKey{}, fmt.Errorf("mpc: cmp dealer: %w", err)
	}

	highCF := dcf.CmpFunc{Point: dcf.Point{Alpha: alphaHigh, Beta: group.FromUint64(1)}, Dir: dcf.LessThan}
	highK0, highK1, err := dcf.Gen(highCF, ctx, csprng)
	if err != nil {
		return CmpKey{}, CmpKey{}, fmt.Errorf("mpc: cmp dealer: %w", err)
	}

	k0 := CmpKey{Party: 0, RShare: r0, WShare: w0, DCFLow: lowK0, DCFHigh: highK0}
	k1 := CmpKey{Party: 1, RShare: r1, WShare: w1, DCFLow: lowK1, DCFHigh: highK1}
	return k0, k1, nil
}

// CmpEval runs a dealt Cmp instance in-process for both parties, given
// their shares x0, x1 of x (x0+x1 = x mod p). It reveals z = x+r, evaluates
// both straddling DCFs at z, and returns each party's share of the
// interval indicator [xL <= x < xR] CmpDealer fixed. The two DCF outputs
// and the wrap share combine by plain field addition; no multiplication is
// needed.
func CmpEval(ctx *prg.Context, k0, k1 CmpKey, x0, x1 group.Element) (share0, share1 group.Element, err error) {
	z0 := group.Add(x0, k0.RShare)
	z1 := group.Add(x1, k1.RShare)
	zBits, err := bitvec.FromUint64(group.Add(z0, z1).Uint64(), cmpWidth)
	if err != nil {
		return group.Element{}, group.Element{}, fmt.Errorf("mpc: cmp eval: %w", err)
	}

	low0, err := dcf.Eval(ctx, 0, k0.DCFLow, zBits)
	if err != nil {
		return group.Element{}, group.Element{}, fmt.Errorf("mpc: cmp eval: %w", err)
	}
	low1, err := dcf.Eval(ctx, 1, k1.DCFLow, zBits)
	if err != nil {
		return group.Element{}, group.Element{}, fmt.Errorf("mpc: cmp eval: %w", err)
	}
	high0, err := dcf.Eval(ctx, 0, k0.DCFHigh, zBits)
	if err != nil {
		return group.Element{}, group.Element{}, fmt.Errorf("mpc: cmp eval: %w", err)
	}
	high1, err := dcf.Eval(ctx, 1, k1.DCFHigh, zBits)
	if err != nil {
		return group.Element{}, group.Element{}, fmt.Errorf("mpc: cmp eval: %w", err)
	}

	share0 = group.Add(group.Add(low0, high0), k0.WShare)
	share1 = group.Add(group.Add(low1, high1), k1.WShare)
	return share0, share1, nil
}
