package group

import "math/rand/v2"

const (
	inviteCharset = "0123456789abcdefghijklmnopqrstuvwxyz"
	inviteLength  = 6
)

// NewInviteCode returns a random six-character base-36 code.
func NewInviteCode() string {
	code := make([]byte, inviteLength)
	for i := range code {
		code[i] = inviteCharset[rand.IntN(len(inviteCharset))]
	}
	return string(code)
}
