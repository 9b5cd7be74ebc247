package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	minCredentialLength = 12

	upperAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerAlphabet = "abcdefghijklmnopqrstuvwxyz"
	digitAlphabet = "0123456789"
	fullAlphabet  = upperAlphabet + lowerAlphabet + digitAlphabet
)

// GenerateCredential returns a random alphanumeric password of at least 12 characters
// containing at least one upper-case letter, one lower-case letter and one digit.
func GenerateCredential(length int) (string, error) {
	if length < minCredentialLength {
		length = minCredentialLength
	}

	buf := make([]byte, length)
	// one character from each class, then fill and shuffle
	for i, set := range []string{upperAlphabet, lowerAlphabet, digitAlphabet} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}
	for i := 3; i < length; i++ {
		c, err := randomChar(fullAlphabet)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}

	for i := length - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	idx, err := randomInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[idx], nil
}

func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("generate credential: %w", err)
	}
	return int(n.Int64()), nil
}
