// internal/utils/crypto.go
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// FingerprintDocument hashes the canonical JSON form of a document. Map keys
// are marshalled in sorted order so equal documents hash equally.
func FingerprintDocument(doc map[string]interface{}) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func VerifyFingerprint(doc map[string]interface{}, expectedHash string) bool {
	actual, err := FingerprintDocument(doc)
	if err != nil {
		return false
	}
	return actual == expectedHash
}
