package event

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/minio/sha256-simd"

	"quill.dev/pkg/encoders/hex"
	"quill.dev/pkg/encoders/tag"
	"quill.dev/pkg/utils/chk"
)

// jsonBytes encodes v as JSON without HTML escaping, which would otherwise
// rewrite <, > and & and change the hash pre-image.
func jsonBytes(v interface{}) (b []byte, err error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err = enc.Encode(v); chk.E(err) {
		return
	}
	b = bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return
}

// Serialize renders the canonical pre-image whose SHA-256 is the event id:
//
//	[0,"<pubkey>",<created_at>,<kind>,<tags>,"<content>"]
//
// with the tags array in wire form and no interior whitespace. Two events
// with the same logical fields always serialize to the same bytes.
func (ev *E) Serialize() (b []byte, err error) {
	tags := ev.Tags
	if tags == nil {
		tags = tag.S{}
	}
	var tj, pk, ct []byte
	if tj, err = jsonBytes(tags); chk.E(err) {
		return
	}
	if pk, err = jsonBytes(ev.Pubkey); chk.E(err) {
		return
	}
	if ct, err = jsonBytes(ev.Content); chk.E(err) {
		return
	}
	buf := new(bytes.Buffer)
	buf.WriteString("[0,")
	buf.Write(pk)
	buf.WriteByte(',')
	buf.WriteString(strconv.FormatInt(ev.CreatedAt.I64(), 10))
	buf.WriteByte(',')
	buf.WriteString(strconv.FormatUint(ev.Kind.U64(), 10))
	buf.WriteByte(',')
	buf.Write(tj)
	buf.WriteByte(',')
	buf.Write(ct)
	buf.WriteByte(']')
	b = buf.Bytes()
	return
}

// GetIDBytes computes the 32 byte id hash of the event.
func (ev *E) GetIDBytes() (id []byte, err error) {
	var b []byte
	if b, err = ev.Serialize(); chk.E(err) {
		return
	}
	sum := sha256.Sum256(b)
	id = sum[:]
	return
}

// GetID computes the id as lowercase hex.
func (ev *E) GetID() (id string, err error) {
	var b []byte
	if b, err = ev.GetIDBytes(); err != nil {
		return
	}
	id = hex.Enc(b)
	return
}

// CheckID recomputes the id and compares it to the one the event carries.
func (ev *E) CheckID() (valid bool, err error) {
	var id string
	if id, err = ev.GetID(); err != nil {
		return
	}
	valid = id == ev.ID
	return
}
