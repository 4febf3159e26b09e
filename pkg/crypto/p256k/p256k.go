// Package p256k implements the signer.I interface over the btcec secp256k1
// library, producing and checking BIP-340 schnorr signatures with x-only
// public keys.
package p256k

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"lukechampine.com/frand"

	"quill.dev/pkg/interfaces/signer"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/errorf"
)

// KeyLen is the byte length of secret keys, x-only public keys and the two
// halves of a signature.
const KeyLen = 32

// SigLen is the byte length of a serialized schnorr signature.
const SigLen = 64

// Signer is a secp256k1 keypair implementing signer.I.
type Signer struct {
	sec      *btcec.PrivateKey
	pub      *btcec.PublicKey
	skb, pkb []byte
}

var _ signer.I = &Signer{}

// Generate creates a new keypair from a CSPRNG.
func (s *Signer) Generate() (err error) {
	for {
		skb := frand.Bytes(KeyLen)
		sec, pub := btcec.PrivKeyFromBytes(skb)
		if sec.Key.IsZero() {
			continue
		}
		s.sec, s.pub = sec, pub
		s.skb = sec.Serialize()
		s.pkb = schnorr.SerializePubKey(pub)
		return
	}
}

// InitSec loads a 32 byte secret key and derives the public key.
func (s *Signer) InitSec(skb []byte) (err error) {
	if len(skb) != KeyLen {
		return errorf.E("p256k: secret key must be %d bytes, got %d", KeyLen, len(skb))
	}
	sec, pub := btcec.PrivKeyFromBytes(skb)
	if sec.Key.IsZero() {
		return errorf.E("p256k: secret key is zero")
	}
	s.sec, s.pub = sec, pub
	s.skb = sec.Serialize()
	s.pkb = schnorr.SerializePubKey(pub)
	return
}

// InitPub loads a 32 byte x-only public key for verification.
func (s *Signer) InitPub(pkb []byte) (err error) {
	if s.pub, err = schnorr.ParsePubKey(pkb); chk.E(err) {
		return
	}
	s.pkb = schnorr.SerializePubKey(s.pub)
	return
}

// Sec returns the secret key bytes.
func (s *Signer) Sec() []byte { return s.skb }

// Pub returns the x-only public key bytes.
func (s *Signer) Pub() []byte { return s.pkb }

// Sign produces a 64 byte schnorr signature over a 32 byte message.
func (s *Signer) Sign(msg []byte) (sig []byte, err error) {
	if s.sec == nil {
		err = errorf.E("p256k: signer has no secret key")
		return
	}
	var ss *schnorr.Signature
	if ss, err = schnorr.Sign(s.sec, msg); chk.E(err) {
		return
	}
	sig = ss.Serialize()
	return
}

// Verify checks a 64 byte schnorr signature over a 32 byte message.
func (s *Signer) Verify(msg, sig []byte) (valid bool, err error) {
	if s.pub == nil {
		err = errorf.E("p256k: signer has no public key")
		return
	}
	var ss *schnorr.Signature
	if ss, err = schnorr.ParseSignature(sig); err != nil {
		return
	}
	valid = ss.Verify(msg, s.pub)
	return
}
