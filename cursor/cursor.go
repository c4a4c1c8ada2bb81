// Package cursor encodes pagination positions as opaque client tokens.
//
// A token carries "resume after sequence N in chat C". The payload is signed
// with HMAC-SHA256 under a server-held key, so a client can neither forge a
// position nor replay a token against another chat without detection. The
// chat match itself is enforced by the service on decode.
package cursor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"chat-backend/errors"
)

type Codec struct {
	secret []byte
}

func NewCodec(secret string) Codec {
	return Codec{secret: []byte(secret)}
}

// Encode builds the token for "next message has sequence > seq" in a chat.
func (c Codec) Encode(chatID string, seq uint64) string {
	payload := chatID + ":" + strconv.FormatUint(seq, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) +
		"." + base64.RawURLEncoding.EncodeToString(c.sign(payload))
}

// Decode reverses Encode. Any structural defect, signature mismatch or
// unparsable sequence yields ErrInvalidCursor; the caller learns nothing
// about which check failed.
func (c Codec) Decode(token string) (string, uint64, error) {
	encodedPayload, encodedSig, ok := strings.Cut(token, ".")
	if !ok {
		return "", 0, fmt.Errorf("%w: missing signature", errors.ErrInvalidCursor)
	}
	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return "", 0, fmt.Errorf("%w: payload encoding", errors.ErrInvalidCursor)
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", 0, fmt.Errorf("%w: signature encoding", errors.ErrInvalidCursor)
	}
	if !hmac.Equal(sig, c.sign(string(payload))) {
		return "", 0, fmt.Errorf("%w: signature mismatch", errors.ErrInvalidCursor)
	}

	chatID, rawSeq, ok := strings.Cut(string(payload), ":")
	if !ok || chatID == "" {
		return "", 0, fmt.Errorf("%w: malformed payload", errors.ErrInvalidCursor)
	}
	seq, err := strconv.ParseUint(rawSeq, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: malformed sequence", errors.ErrInvalidCursor)
	}
	return chatID, seq, nil
}

func (c Codec) sign(payload string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
