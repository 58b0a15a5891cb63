package jobchain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/jobchain/errors"
)

// AddressLength must not change once a store holds addresses.
var AddressLength = 20

// Address identifies an account. It is the truncated sha256 digest of the
// condition controlling it.
type Address []byte

// NewAddress hashes data into an address. Nil data gives a nil address.
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return Address(sum[:AddressLength])
}

func (a Address) Equals(o Address) bool {
	return bytes.Equal(a, o)
}

func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.ErrInput.Newf("address of %d bytes: %v", len(a), []byte(a))
	}
	return nil
}

// String is the upper case hex form, or (nil) for an empty address.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a)))
}

// UnmarshalJSON accepts plain hex or one of the prefixed forms
// hex:<hex>, bech32:<bech32> and cond:<condition>. The condition form
// yields the address of that condition.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	format, value := "hex", s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		format, value = s[:i], s[i+1:]
	}
	if value == "" {
		*a = nil
		return nil
	}

	var addr Address
	switch format {
	case "hex":
		decoded, err := hex.DecodeString(value)
		if err != nil {
			return errors.ErrInput.Newf("hex address: %s", err)
		}
		addr = decoded
	case "bech32":
		_, payload, err := decodeBech32(value)
		if err != nil {
			return err
		}
		addr = payload
	case "cond":
		var c Condition
		if err := c.parseString(value); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		addr = c.Address()
	default:
		return errors.ErrType.Newf("unknown address format %q", format)
	}
	if err := addr.Validate(); err != nil {
		return err
	}
	*a = addr
	return nil
}

// Bech32 encodes the address with the given human readable prefix.
func (a Address) Bech32(hrp string) (string, error) {
	data, err := bech32.ConvertBits(a, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	enc, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return enc, nil
}

// ParseBech32 decodes an address and requires its prefix to be hrp.
func ParseBech32(hrp, enc string) (Address, error) {
	got, payload, err := decodeBech32(enc)
	if err != nil {
		return nil, err
	}
	if got != hrp {
		return nil, errors.ErrInput.Newf("bech32 prefix %q, want %q", got, hrp)
	}
	addr := Address(payload)
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

func decodeBech32(enc string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(enc)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32 payload: %s", err)
	}
	return hrp, payload, nil
}
