// Package signer defines the interface over secp256k1 key operations the
// rest of the codebase consumes.
package signer

// I is a BIP-340 capable keypair. Sign and Verify operate on a 32 byte
// message, in practice the event id hash.
type I interface {
	// Generate creates a fresh keypair.
	Generate() (err error)
	// InitSec initializes from a 32 byte secret key and derives the public
	// key.
	InitSec(skb []byte) (err error)
	// InitPub initializes verification-only from a 32 byte x-only public key.
	InitPub(pkb []byte) (err error)
	// Sec returns the secret key bytes.
	Sec() []byte
	// Pub returns the x-only public key bytes.
	Pub() []byte
	// Sign produces a 64 byte schnorr signature over msg.
	Sign(msg []byte) (sig []byte, err error)
	// Verify checks a 64 byte schnorr signature over msg.
	Verify(msg, sig []byte) (valid bool, err error)
}
