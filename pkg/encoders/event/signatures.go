package event

import (
	"quill.dev/pkg/crypto/p256k"
	"quill.dev/pkg/encoders/hex"
	"quill.dev/pkg/interfaces/signer"
	"quill.dev/pkg/utils/chk"
)

// Sign populates Pubkey, ID and Sig from the keys. The caller sets CreatedAt,
// Kind, Tags and Content beforehand.
func (ev *E) Sign(keys signer.I) (err error) {
	ev.Pubkey = hex.Enc(keys.Pub())
	var idb []byte
	if idb, err = ev.GetIDBytes(); chk.E(err) {
		return
	}
	ev.ID = hex.Enc(idb)
	var sig []byte
	if sig, err = keys.Sign(idb); chk.E(err) {
		return
	}
	ev.Sig = hex.Enc(sig)
	return
}

// Verify checks the signature over the id the event carries, under the
// pubkey it carries. Pair with CheckID for full ingress validation.
func (ev *E) Verify() (valid bool, err error) {
	var pkb, sigb, idb []byte
	if pkb, err = hex.DecLen(ev.Pubkey, p256k.KeyLen); err != nil {
		return
	}
	if sigb, err = hex.DecLen(ev.Sig, p256k.SigLen); err != nil {
		return
	}
	if idb, err = hex.DecLen(ev.ID, p256k.KeyLen); err != nil {
		return
	}
	keys := &p256k.Signer{}
	if err = keys.InitPub(pkb); chk.D(err) {
		return
	}
	return keys.Verify(idb, sigb)
}
