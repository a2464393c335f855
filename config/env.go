package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func init() {
	// Load env from .env
	godotenv.Load()
}

func EnvString(key string, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func EnvInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

func EnvBool(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}

// ChunkByteBudget is the default encoded-size cap for payload chunks.
// Firestore rejects fields near 1 MiB, so the default sits well under it.
func ChunkByteBudget() int {
	return EnvInt("CHUNK_BYTE_BUDGET", 900_000)
}

// ChunkXorKey is the obfuscation key for staged payload chunks. Not a
// secret in the cryptographic sense; the encoding is labeled as such.
func ChunkXorKey() []byte {
	return []byte(EnvString("CHUNK_XOR_KEY", "rentnotice-payload-v1"))
}
