package signing

import (
	"crypto/ecdsa"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// L1 auth: the CLOB accepts an EIP-712 signature over the ClobAuthDomain
// struct to prove wallet control when creating or deriving API keys.

const clobAuthMessage = "This message attests that I control the given wallet"

var (
	clobAuthDomainNameHash    = crypto.Keccak256Hash([]byte("ClobAuthDomain"))
	clobAuthDomainVersionHash = crypto.Keccak256Hash([]byte("1"))
	clobAuthTypeHash          = crypto.Keccak256Hash([]byte("ClobAuth(address address,string timestamp,uint256 nonce,string message)"))

	bytes32Ty = mustABIType("bytes32")
	addressTy = mustABIType("address")
	uint256Ty = mustABIType("uint256")
)

func mustABIType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ty
}

func clobAuthDomainSeparator(chainID int64) (common.Hash, error) {
	encoded, err := abi.Arguments{
		{Type: bytes32Ty},
		{Type: bytes32Ty},
		{Type: bytes32Ty},
		{Type: uint256Ty},
	}.Pack(
		crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId)")),
		clobAuthDomainNameHash,
		clobAuthDomainVersionHash,
		big.NewInt(chainID),
	)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

// BuildClobAuthSignature signs the ClobAuth struct for the L1 auth headers.
func BuildClobAuthSignature(privateKey *ecdsa.PrivateKey, signer common.Address, chainID int64, timestamp int64, nonce uint64) (string, error) {
	domainSeparator, err := clobAuthDomainSeparator(chainID)
	if err != nil {
		return "", err
	}

	// EIP-712 encodes dynamic types as keccak256(value).
	tsHash := crypto.Keccak256Hash([]byte(strconv.FormatInt(timestamp, 10)))
	msgHash := crypto.Keccak256Hash([]byte(clobAuthMessage))

	encoded, err := abi.Arguments{
		{Type: bytes32Ty},
		{Type: addressTy},
		{Type: bytes32Ty},
		{Type: uint256Ty},
		{Type: bytes32Ty},
	}.Pack(
		clobAuthTypeHash,
		signer,
		tsHash,
		new(big.Int).SetUint64(nonce),
		msgHash,
	)
	if err != nil {
		return "", err
	}

	structHash := crypto.Keccak256Hash(encoded)
	raw := make([]byte, 0, 2+32+32)
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, domainSeparator.Bytes()...)
	raw = append(raw, structHash.Bytes()...)
	digest := crypto.Keccak256Hash(raw)

	sig, err := crypto.Sign(digest.Bytes(), privateKey)
	if err != nil {
		return "", err
	}
	sig[64] += 27
	return "0x" + common.Bytes2Hex(sig), nil
}
