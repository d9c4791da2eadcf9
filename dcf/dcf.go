package dcf

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"

	"dcf-retrieval/bitvec"
	"dcf-retrieval/group"
	"dcf-retrieval/prg"
)

// convertIV distinguishes the value-conversion keystream from Context.Expand's
// tree-walk keystream, which always runs over an all-zero IV. Both are AES-CTR
// under the node seed as key; using a different IV is enough to decorrelate
// them, the same trick optreedpf's separate convert() PRG call achieves by
// running a second PRG instance entirely.
var convertIV = [aes.BlockSize]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// convertSeed maps a λ-byte node seed to a group element: the per-level value
// share the DCF accumulates, distinct from the seed's role in the tree walk.
func convertSeed(seed []byte) (group.Element, error) {
	block, err := aes.NewCipher(seed)
	if err != nil {
		return group.Element{}, fmt.Errorf("dcf: convert seed: %w", err)
	}
	out := make([]byte, group.Lambda)
	cipher.NewCTR(block, convertIV[:]).XORKeyStream(out, out)
	return group.FromBytes(out)
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func complement(b bitvec.Bits) (bitvec.Bits, error) {
	width := b.Width()
	return bitvec.FromUint64(^b.Uint64()&bitvec.MaskFor(width), width)
}

// Gen runs the DCF dealer: it samples independent seeds for each party and
// produces one key per party such that Eval(0,k0,x) + Eval(1,k1,x) = f_cf(x)
// in the field, for every x.
//
// GreaterThan is implemented as LessThan over the bit-complemented domain:
// x > α  ⟺  (2^n-1-x) < (2^n-1-α), so Gen rewrites α (and Eval rewrites x)
// through the order-reversing bijection v ↦ 2^n-1-v rather than duplicating
// the Gen/Eval algorithm for a second direction.
func Gen(cf CmpFunc, ctx *prg.Context, csprng io.Reader) (Key, Key, error) {
	alpha := cf.Point.Alpha
	if cf.Dir == GreaterThan {
		var err error
		alpha, err = complement(alpha)
		if err != nil {
			return Key{}, Key{}, fmt.Errorf("dcf: gen: %w", err)
		}
	}
	n := alpha.Width()
	alphaBits := alpha.MSBFirst()
	beta := cf.Point.Beta

	seed0, err := prg.RandomSeed(csprng, group.Lambda)
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("dcf: gen: seed0: %w", err)
	}
	seed1, err := prg.RandomSeed(csprng, group.Lambda)
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("dcf: gen: seed1: %w", err)
	}

	seed := [2][]byte{seed0, seed1}
	ctrl := [2]byte{0, 1}

	cws := make([]CorrectionWord, n)
	valueAlpha := group.Zero()

	for i := 0; i < n; i++ {
		var childL, childR [2][]byte
		var ctrlL, ctrlR [2]byte
		for p := 0; p < 2; p++ {
			l, r, cl, cr, err := ctx.Expand(seed[p])
			if err != nil {
				return Key{}, Key{}, fmt.Errorf("dcf: gen: level %d party %d: %w", i, p, err)
			}
			childL[p], childR[p], ctrlL[p], ctrlR[p] = l, r, cl, cr
		}

		aBit := alphaBits[i]
		keepLeft := aBit == 0
		isParty1Active := ctrl[1] == 1

		var keep, lose [2][]byte
		var ctrlKeep [2]byte
		if keepLeft {
			keep, lose = childL, childR
			ctrlKeep = ctrlL
		} else {
			keep, lose = childR, childL
			ctrlKeep = ctrlR
		}

		seedCW := xorBytes(lose[0], lose[1])

		v0Lose, err := convertSeed(lose[0])
		if err != nil {
			return Key{}, Key{}, fmt.Errorf("dcf: gen: level %d: %w", i, err)
		}
		v1Lose, err := convertSeed(lose[1])
		if err != nil {
			return Key{}, Key{}, fmt.Errorf("dcf: gen: level %d: %w", i, err)
		}

		valueCW := group.Sub(group.Sub(v1Lose, v0Lose), valueAlpha)
		if isParty1Active {
			valueCW = group.Neg(valueCW)
		}
		loseIsLeft := !keepLeft
		if loseIsLeft {
			betaCorrected := beta
			if isParty1Active {
				betaCorrected = group.Neg(beta)
			}
			valueCW = group.Add(valueCW, betaCorrected)
		}

		tCWLeft := ctrlL[0] ^ ctrlL[1] ^ aBit ^ 1
		tCWRight := ctrlR[0] ^ ctrlR[1] ^ aBit

		v0Keep, err := convertSeed(keep[0])
		if err != nil {
			return Key{}, Key{}, fmt.Errorf("dcf: gen: level %d: %w", i, err)
		}
		v1Keep, err := convertSeed(keep[1])
		if err != nil {
			return Key{}, Key{}, fmt.Errorf("dcf: gen: level %d: %w", i, err)
		}

		valueCWSigned := valueCW
		if isParty1Active {
			valueCWSigned = group.Neg(valueCW)
		}
		valueAlpha = group.Add(group.Add(group.Sub(valueAlpha, v1Keep), v0Keep), valueCWSigned)

		cws[i] = CorrectionWord{Seed: seedCW, TL: tCWLeft, TR: tCWRight, Value: valueCW}

		var tCWKeep byte
		if keepLeft {
			tCWKeep = tCWLeft
		} else {
			tCWKeep = tCWRight
		}

		for p := 0; p < 2; p++ {
			nextSeed := keep[p]
			nextCtrl := ctrlKeep[p]
			if ctrl[p] == 1 {
				nextSeed = xorBytes(nextSeed, seedCW)
				nextCtrl ^= tCWKeep
			}
			seed[p] = nextSeed
			ctrl[p] = nextCtrl
		}
	}

	v0n, err := convertSeed(seed[0])
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("dcf: gen: final: %w", err)
	}
	v1n, err := convertSeed(seed[1])
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("dcf: gen: final: %w", err)
	}
	cwFinal := group.Sub(group.Sub(v1n, v0n), valueAlpha)
	if ctrl[1] == 1 {
		cwFinal = group.Neg(cwFinal)
	}

	k0 := Key{Party: 0, Seed: seed0, Width: n, Dir: cf.Dir, CWs: cws, CWFinal: cwFinal}
	k1 := Key{Party: 1, Seed: seed1, Width: n, Dir: cf.Dir, CWs: cws, CWFinal: cwFinal}
	return k0, k1, nil
}

// Eval walks the DCF tree for x under the given party's key, returning that
// party's additive share of f(x).
func Eval(ctx *prg.Context, party uint8, k Key, x bitvec.Bits) (group.Element, error) {
	if x.Width() != k.Width {
		return group.Element{}, fmt.Errorf("dcf: eval: x width %d does not match key width %d", x.Width(), k.Width)
	}
	if party > 1 {
		return group.Element{}, fmt.Errorf("dcf: eval: party id must be 0 or 1, got %d", party)
	}
	if len(k.CWs) != k.Width {
		return group.Element{}, fmt.Errorf("dcf: eval: key has %d correction words, want %d", len(k.CWs), k.Width)
	}

	if k.Dir == GreaterThan {
		var err error
		x, err = complement(x)
		if err != nil {
			return group.Element{}, fmt.Errorf("dcf: eval: %w", err)
		}
	}
	xBits := x.MSBFirst()

	seed := k.Seed
	ctrl := party
	value := group.Zero()

	for i := 0; i < k.Width; i++ {
		childL, childR, ctrlL, ctrlR, err := ctx.Expand(seed)
		if err != nil {
			return group.Element{}, fmt.Errorf("dcf: eval: level %d: %w", i, err)
		}
		cw := k.CWs[i]
		var selected []byte
		var selCtrl byte
		if xBits[i] == 0 {
			selected, selCtrl = childL, ctrlL^(ctrl&cw.TL)
		} else {
			selected, selCtrl = childR, ctrlR^(ctrl&cw.TR)
		}

		// The value share comes from the selected child before its seed
		// correction, the same uncorrected child seeds Gen converts.
		vSel, err := convertSeed(selected)
		if err != nil {
			return group.Element{}, fmt.Errorf("dcf: eval: level %d: %w", i, err)
		}
		if ctrl == 1 {
			selected = xorBytes(selected, cw.Seed)
			vSel = group.Add(vSel, cw.Value)
		}
		if party == 1 {
			vSel = group.Neg(vSel)
		}
		value = group.Add(value, vSel)

		seed = selected
		ctrl = selCtrl
	}

	vFinal, err := convertSeed(seed)
	if err != nil {
		return group.Element{}, fmt.Errorf("dcf: eval: final: %w", err)
	}
	if ctrl == 1 {
		vFinal = group.Add(vFinal, k.CWFinal)
	}
	if party == 1 {
		vFinal = group.Neg(vFinal)
	}
	value = group.Add(value, vFinal)

	return value, nil
}
