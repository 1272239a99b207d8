package utils

import (
	"crypto/rand"
	"fmt"
)

// GenerateShortID tạo ID ngắn (8 ký tự hex)
func GenerateShortID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}
