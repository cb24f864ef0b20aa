package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoIdAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateNanoIDWithPrefix returns prefix_xxxx with a lowercase alphanumeric body
func GenerateNanoIDWithPrefix(prefix string, size int) string {
	id, err := gonanoid.Generate(nanoIdAlphabet, size)
	if err != nil {
		id = gonanoid.Must(size)
	}
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
