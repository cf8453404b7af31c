package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// encodeGetSentiment ABI-encodes a getSentiment(string) call: the 4-byte
// selector, the head word pointing at the dynamic argument, then the
// length-prefixed, 32-byte-padded token symbol.
func encodeGetSentiment(token string) string {
	selector := methodSelector("getSentiment(string)")

	head := make([]byte, 32)
	head[31] = 0x20

	data := append(selector, head...)
	data = append(data, encodeString(token)...)
	return "0x" + hex.EncodeToString(data)
}

func methodSelector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

func encodeString(s string) []byte {
	b := []byte(s)
	padded := (len(b) + 31) / 32 * 32

	out := make([]byte, 32+padded)
	binary.BigEndian.PutUint64(out[24:32], uint64(len(b)))
	copy(out[32:], b)
	return out
}

// decodeInt256 interprets a 32-byte eth_call result as a signed integer.
// Stored scores live in [-100, 100], so anything outside int64 is corrupt.
func decodeInt256(hexResult string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(hexResult), "0x")
	if raw == "" {
		return 0, errors.New("[Ledger] empty call result")
	}

	b, err := hex.DecodeString(raw)
	if err != nil {
		return 0, fmt.Errorf("[Ledger] malformed call result: %w", err)
	}
	if len(b) != 32 {
		return 0, fmt.Errorf("[Ledger] unexpected call result length %d", len(b))
	}

	v := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		// negative value in two's complement
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	if !v.IsInt64() {
		return 0, errors.New("[Ledger] call result out of int64 range")
	}
	return v.Int64(), nil
}
