package scanner

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// DefaultChunkSize is the read size used when streaming a file through
// the digest. The digest is chunk-size independent; this only bounds
// memory per file.
const DefaultChunkSize = 64 * 1024

// HashFile computes the xxhash64 digest of a file's content, streamed in
// chunks of chunkSize bytes, and returns it as 16 lowercase hex characters.
// A chunkSize <= 0 falls back to DefaultChunkSize.
func HashFile(path string, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	digest := xxhash.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}
