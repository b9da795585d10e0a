package aspect

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// DigestAlgo names a digest algorithm.
type DigestAlgo string

// Digest algorithms.
const (
	DigestBlake2b256 DigestAlgo = "blake2b-256"
	DigestBlake2b512 DigestAlgo = "blake2b-512"
	DigestSHA256     DigestAlgo = "sha256"
)

// Digester fingerprints byte content too large to print.
type Digester interface {
	// Algo returns the name shown next to the digest.
	Algo() DigestAlgo

	// Digest returns the hex-encoded digest of data.
	Digest(data []byte) string
}

type blake2bDigester struct {
	size int
}

// Blake2b256 returns a BLAKE2b-256 digester. It is the Printer default.
func Blake2b256() Digester {
	return &blake2bDigester{size: blake2b.Size256}
}

// Blake2b512 returns a BLAKE2b-512 digester.
func Blake2b512() Digester {
	return &blake2bDigester{size: blake2b.Size}
}

func (d *blake2bDigester) Algo() DigestAlgo {
	if d.size == blake2b.Size {
		return DigestBlake2b512
	}
	return DigestBlake2b256
}

func (d *blake2bDigester) Digest(data []byte) string {
	if d.size == blake2b.Size {
		sum := blake2b.Sum512(data)
		return hex.EncodeToString(sum[:])
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type sha256Digester struct{}

// SHA256 returns a SHA-256 digester.
func SHA256() Digester {
	return sha256Digester{}
}

func (sha256Digester) Algo() DigestAlgo { return DigestSHA256 }

func (sha256Digester) Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digestLabel renders data as "<n> bytes, <algo>:<digest>".
func digestLabel(d Digester, data []byte) string {
	return fmt.Sprintf("%d bytes, %s:%s", len(data), d.Algo(), d.Digest(data))
}

// builtinDigesters maps algorithm names to digesters for SetParams and
// ConfigureMap.
func builtinDigesters() map[DigestAlgo]Digester {
	return map[DigestAlgo]Digester{
		DigestBlake2b256: Blake2b256(),
		DigestBlake2b512: Blake2b512(),
		DigestSHA256:     SHA256(),
	}
}
