package auth

import "crypto/subtle"

// Clients maps an API client id to its shared secret.
type Clients map[string]string

// Verify reports whether secret belongs to clientID. Unknown ids still pay
// for a comparison so the response time does not reveal which ids exist.
func (c Clients) Verify(clientID, secret string) bool {
	want, ok := c[clientID]
	if !ok {
		subtle.ConstantTimeCompare([]byte(secret), []byte(secret))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(secret)) == 1
}
