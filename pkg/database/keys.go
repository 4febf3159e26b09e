package database

import (
	"quill.dev/pkg/crypto/p256k"
	"quill.dev/pkg/interfaces/signer"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/log"
)

var (
	keyPrivate = []byte("keys/private_key")
	keyPublic  = []byte("keys/public_key")
)

// LoadKeys returns the persisted client keypair, generating and persisting a
// fresh one on first use. Later calls return the stored pair unchanged.
func (d *D) LoadKeys() (keys signer.I, err error) {
	var skb []byte
	if skb, err = d.get(keyPrivate); chk.E(err) {
		return
	}
	s := &p256k.Signer{}
	if skb != nil {
		if err = s.InitSec(skb); chk.E(err) {
			return
		}
		keys = s
		return
	}
	if err = s.Generate(); chk.E(err) {
		return
	}
	if err = d.Put(keyPrivate, s.Sec()); chk.E(err) {
		return
	}
	if err = d.Put(keyPublic, s.Pub()); chk.E(err) {
		return
	}
	log.I.F("generated new keypair, pubkey %x", s.Pub())
	keys = s
	return
}
