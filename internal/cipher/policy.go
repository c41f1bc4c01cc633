package cipher

import (
	"fmt"
	"math/big"
	"strings"
)

// NumeralPolicy decides what happens to a numeral outside 0..255.
type NumeralPolicy string

const (
	// PolicyWrap reduces the value modulo 256.
	PolicyWrap NumeralPolicy = "wrap"
	// PolicyClamp pins the value to 0 or 255.
	PolicyClamp NumeralPolicy = "clamp"
	// PolicyReject fails with ErrNumeralRange.
	PolicyReject NumeralPolicy = "reject"
)

// ParseNumeralPolicy accepts a policy name. Empty means wrap.
func ParseNumeralPolicy(s string) (NumeralPolicy, error) {
	switch p := NumeralPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyWrap, nil
	case PolicyWrap, PolicyClamp, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown numeral policy %q", s)
	}
}

var (
	big256 = big.NewInt(256)
	big255 = big.NewInt(255)
)

// byteValue maps v onto a byte under the policy. ok is false only for
// PolicyReject with v outside 0..255.
func (p NumeralPolicy) byteValue(v *big.Int) (b byte, ok bool) {
	if v.Sign() >= 0 && v.Cmp(big255) <= 0 {
		return byte(v.Int64()), true
	}
	switch p {
	case PolicyClamp:
		if v.Sign() < 0 {
			return 0, true
		}
		return 255, true
	case PolicyReject:
		return 0, false
	default:
		return byte(new(big.Int).Mod(v, big256).Int64()), true
	}
}

func policyParam(params map[string]interface{}) NumeralPolicy {
	switch v := params["policy"].(type) {
	case NumeralPolicy:
		return v
	case string:
		if p, err := ParseNumeralPolicy(v); err == nil {
			return p
		}
	}
	return PolicyWrap
}
