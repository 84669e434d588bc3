package ledger

import (
	"encoding/base64"
	"time"
)

// tlv tags for the simplified-invoice QR payload (spec.md §6).
const (
	tlvSellerName      = 1
	tlvSellerVAT       = 2
	tlvTimestamp       = 3
	tlvVATAmount       = 4
	tlvTotalIncVAT     = 5
)

// buildQRPayload encodes the five mandated TLV fields and returns the
// base64 form stored on a SIMPLIFIED invoice (spec.md §6). Not grounded in
// the pack: no example repo ships a TLV/QR encoder, so this is hand-rolled
// over stdlib encoding (DESIGN.md exception — byte-oriented TLV has
// no natural library fit, and the teacher itself reaches for stdlib
// encoding/* for its own wire formats).
func buildQRPayload(sellerName, sellerVAT string, ts time.Time, vatAmount, totalIncVAT string) string {
	var buf []byte
	buf = appendTLV(buf, tlvSellerName, []byte(sellerName))
	buf = appendTLV(buf, tlvSellerVAT, []byte(sellerVAT))
	buf = appendTLV(buf, tlvTimestamp, []byte(ts.UTC().Format(time.RFC3339)))
	buf = appendTLV(buf, tlvVATAmount, []byte(vatAmount))
	buf = appendTLV(buf, tlvTotalIncVAT, []byte(totalIncVAT))
	return base64.StdEncoding.EncodeToString(buf)
}

// appendTLV appends one tag-length-value field; length is a single byte,
// matching the compact one-byte-length TLV convention of the QR payload.
func appendTLV(buf []byte, tag byte, value []byte) []byte {
	buf = append(buf, tag, byte(len(value)))
	return append(buf, value...)
}
