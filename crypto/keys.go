/*
Package crypto holds the ed25519 keys transactions are signed with.
*/
package crypto

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	amino "github.com/tendermint/go-amino"
	"golang.org/x/crypto/ed25519"
)

var cdc = amino.NewCodec()

// Signer signs messages without exposing its key, so that it can be
// backed by a hardware device.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

type PublicKey struct {
	Ed25519 []byte `json:"ed25519"`
}

// PrivateKey is the 32 byte seed followed by the public key.
type PrivateKey struct {
	Ed25519 []byte `json:"ed25519"`
}

type Signature struct {
	Ed25519 []byte `json:"ed25519"`
}

// GenPrivKeyEd25519 returns a new random key. It panics when the system
// random source fails.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed derives a key from a 32 byte seed. It panics for
// any other seed length.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}

var _ Signer = (*PrivateKey)(nil)

func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if p == nil || len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrInput, "malformed private key")
	}
	return &Signature{Ed25519: ed25519.Sign(p.Ed25519, message)}, nil
}

func (p *PrivateKey) PublicKey() *PublicKey {
	pub := ed25519.PrivateKey(p.Ed25519).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// Verify reports whether sig signs message with this key. Malformed keys
// and signatures never verify.
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	switch {
	case p == nil || len(p.Ed25519) != ed25519.PublicKeySize:
		return false
	case sig == nil || len(sig.Ed25519) != ed25519.SignatureSize:
		return false
	}
	return ed25519.Verify(p.Ed25519, message, sig.Ed25519)
}

// Condition is sigs/ed25519/<key>. An empty key has no condition.
func (p *PublicKey) Condition() jobchain.Condition {
	if p == nil || len(p.Ed25519) == 0 {
		return nil
	}
	return jobchain.NewCondition("sigs", "ed25519", p.Ed25519)
}

// Address is the address of the key condition, nil for an empty key.
func (p *PublicKey) Address() jobchain.Address {
	if c := p.Condition(); c != nil {
		return c.Address()
	}
	return nil
}

func (p *PublicKey) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

func (p *PublicKey) Unmarshal(raw []byte) error {
	return unmarshal(raw, p)
}

func (p *PrivateKey) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

func (p *PrivateKey) Unmarshal(raw []byte) error {
	return unmarshal(raw, p)
}

func (s *Signature) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *Signature) Unmarshal(raw []byte) error {
	return unmarshal(raw, s)
}

func unmarshal(raw []byte, dst interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, dst); err != nil {
		return errors.Wrapf(errors.ErrInput, "%T: %s", dst, err)
	}
	return nil
}
