package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	methodRegister  = "registerCertificate"
	methodGet       = "getCertificate"
	eventRegistered = "CertificateRegistered"
)

// RegistryABI is the interface of the certificate registry contract. The
// backend relays registrations, so the issuer is an explicit argument rather
// than msg.sender.
const RegistryABI = `[
  {
    "type": "function",
    "name": "registerCertificate",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "contentHash", "type": "bytes32"},
      {"name": "metadataCid", "type": "string"},
      {"name": "subjectDigest", "type": "bytes32"},
      {"name": "issuer", "type": "address"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getCertificate",
    "stateMutability": "view",
    "inputs": [
      {"name": "contentHash", "type": "bytes32"}
    ],
    "outputs": [
      {"name": "storedHash", "type": "bytes32"},
      {"name": "metadataCid", "type": "string"},
      {"name": "subjectDigest", "type": "bytes32"},
      {"name": "issuer", "type": "address"},
      {"name": "registeredAt", "type": "uint256"}
    ]
  },
  {
    "type": "event",
    "name": "CertificateRegistered",
    "anonymous": false,
    "inputs": [
      {"name": "contentHash", "type": "bytes32", "indexed": true},
      {"name": "issuer", "type": "address", "indexed": true},
      {"name": "subjectDigest", "type": "bytes32", "indexed": false},
      {"name": "metadataCid", "type": "string", "indexed": false}
    ]
  }
]`

var registryABI = mustParseABI(RegistryABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
