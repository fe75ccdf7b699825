// Package vault implements the encrypted credential store. Entries for all
// owners are persisted together as one JSON collection under a single kv
// key; the owner field is a display label used for filtering, not an access
// control boundary. Any caller holding the vault and the shared installation
// key can decrypt any entry. See DESIGN.md for why this is kept as-is.
package vault

// Entry is one saved secret. Ciphertext is a cryptox sealed blob
// (nonce || ciphertext+tag); the plaintext secret is never persisted.
type Entry struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	OwnerUsername string `json:"username"`
	Ciphertext    []byte `json:"encryptedPassword"`
}
