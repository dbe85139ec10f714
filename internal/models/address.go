package models

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the byte length of an account or contract address.
const AddressLength = 20

// BillIDLength is the byte length of a bill identifier.
const BillIDLength = 32

// Address identifies an account (a wallet) or a contract such as a ledger
// or a token. The zero value is the null address.
type Address [AddressLength]byte

// ParseAddress parses a 0x-prefixed, 40 hex digit address. Case is ignored.
func ParseAddress(s string) (Address, error) {
	var a Address
	if err := decodeHex(s, a[:]); err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return a, nil
}

// MustAddress is like ParseAddress but panics on malformed input.
// Intended for constants and tests.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ContractAddress derives a deterministic address for a named contract
// (the last 20 bytes of its Keccak-256 hash).
func ContractAddress(name string) Address {
	var a Address
	copy(a[:], keccak256([]byte(name))[12:])
	return a
}

// Hex returns the lowercase 0x-prefixed form.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

// IsZero reports whether a is the null address.
func (a Address) IsZero() bool { return a == Address{} }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.Hex()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// BillID is the opaque 256-bit bill identifier. The ledger only enforces
// uniqueness; collision avoidance is the caller's job (see DeriveBillID).
type BillID [BillIDLength]byte

// ParseBillID parses a 0x-prefixed, 64 hex digit identifier.
func ParseBillID(s string) (BillID, error) {
	var id BillID
	if err := decodeHex(s, id[:]); err != nil {
		return BillID{}, fmt.Errorf("invalid bill id %q: %w", s, err)
	}
	return id, nil
}

// BillIDFromString hashes an arbitrary label into an identifier.
func BillIDFromString(label string) BillID {
	var id BillID
	copy(id[:], keccak256([]byte(label)))
	return id
}

// DeriveBillID builds an identifier the way wallet clients do:
// keccak256(creator ‖ uint256(unix millis) ‖ nonce), tightly packed.
func DeriveBillID(creator Address, at time.Time, nonce []byte) BillID {
	var ts [32]byte
	binary.BigEndian.PutUint64(ts[24:], uint64(at.UnixMilli()))

	packed := make([]byte, 0, AddressLength+len(ts)+len(nonce))
	packed = append(packed, creator[:]...)
	packed = append(packed, ts[:]...)
	packed = append(packed, nonce...)

	var id BillID
	copy(id[:], keccak256(packed))
	return id
}

func (id BillID) Hex() string { return "0x" + hex.EncodeToString(id[:]) }

func (id BillID) String() string { return id.Hex() }

func (id BillID) IsZero() bool { return id == BillID{} }

func (id BillID) MarshalText() ([]byte, error) { return []byte(id.Hex()), nil }

func (id *BillID) UnmarshalText(text []byte) error {
	parsed, err := ParseBillID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func decodeHex(s string, dst []byte) error {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*len(dst) {
		return fmt.Errorf("want %d hex digits, got %d", 2*len(dst), len(s))
	}
	_, err := hex.Decode(dst, []byte(s))
	return err
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
