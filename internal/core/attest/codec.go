package attest

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	requestArgs abi.Arguments
	zoneArgs    abi.Arguments
)

func init() {
	u32, err := abi.NewType("uint32", "", nil)
	if err != nil {
		panic(err)
	}
	requestArgs = abi.Arguments{{Name: "demand", Type: u32}, {Name: "priority", Type: u32}}
	zoneArgs = abi.Arguments{{Name: "total", Type: u32}}
}

// EncodeRequest packs (demand, priority) as two ABI words
func EncodeRequest(demand, priority uint32) ([]byte, error) {
	return requestArgs.Pack(demand, priority)
}

// DecodeRequest unpacks cleartext produced by EncodeRequest
func DecodeRequest(b []byte) (demand, priority uint32, err error) {
	if len(b) != 64 {
		return 0, 0, fmt.Errorf("request cleartext: want 64 bytes, got %d", len(b))
	}
	vals, err := requestArgs.Unpack(b)
	if err != nil {
		return 0, 0, err
	}
	return vals[0].(uint32), vals[1].(uint32), nil
}

// EncodeZone packs a zone total as one ABI word
func EncodeZone(total uint32) ([]byte, error) { return zoneArgs.Pack(total) }

// DecodeZone unpacks cleartext produced by EncodeZone
func DecodeZone(b []byte) (uint32, error) {
	if len(b) != 32 {
		return 0, fmt.Errorf("zone cleartext: want 32 bytes, got %d", len(b))
	}
	vals, err := zoneArgs.Unpack(b)
	if err != nil {
		return 0, err
	}
	return vals[0].(uint32), nil
}
