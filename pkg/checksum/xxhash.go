package checksum

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

func GetFileChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to copy file content to hasher for file %s: %w", filePath, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// CopyWithChecksum copies src to w and returns the checksum of the bytes read.
func CopyWithChecksum(w io.Writer, src string) (string, error) {
	file, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", src, err)
	}
	defer file.Close()

	hasher := xxhash.New()
	if _, err := io.Copy(io.MultiWriter(w, hasher), file); err != nil {
		return "", fmt.Errorf("failed to copy file %s: %w", src, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
