// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dispute

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/reverts"
)

// AttestationLength is the exact wire size of an attestation:
// three 32-byte receipt fields followed by a 65-byte signature.
const AttestationLength = 32 + 32 + 32 + 32 + 32 + 1

var (
	ErrInvalidAttestation = reverts.New(reverts.KindInvalidInput, "attestation must be exactly 161 bytes")
	ErrInvalidSignature   = reverts.New(reverts.KindInvalidInput, "attestation signature does not recover")

	receiptTypeHash = meridian.Keccak256([]byte("Receipt(bytes32 requestCID,bytes32 responseCID,bytes32 subgraphDeploymentID)"))
)

// Attestation is a signed claim that a provider served responseCID for
// requestCID against a subgraph deployment.
type Attestation struct {
	RequestCID           meridian.Bytes32
	ResponseCID          meridian.Bytes32
	SubgraphDeploymentID meridian.Bytes32

	R [32]byte
	S [32]byte
	V byte
}

// DecodeAttestation parses the fixed 161-byte wire form. Length is
// validated up front; no field is interpreted before that.
func DecodeAttestation(raw []byte) (*Attestation, error) {
	if len(raw) != AttestationLength {
		return nil, ErrInvalidAttestation
	}
	var a Attestation
	copy(a.RequestCID[:], raw[0:32])
	copy(a.ResponseCID[:], raw[32:64])
	copy(a.SubgraphDeploymentID[:], raw[64:96])
	copy(a.R[:], raw[96:128])
	copy(a.S[:], raw[128:160])
	a.V = raw[160]
	return &a, nil
}

// Encode returns the wire form.
func (a *Attestation) Encode() []byte {
	out := make([]byte, 0, AttestationLength)
	out = append(out, a.RequestCID.Bytes()...)
	out = append(out, a.ResponseCID.Bytes()...)
	out = append(out, a.SubgraphDeploymentID.Bytes()...)
	out = append(out, a.R[:]...)
	out = append(out, a.S[:]...)
	out = append(out, a.V)
	return out
}

// Digest returns the EIP-712 style signing digest under the given
// domain separator.
func (a *Attestation) Digest(domain meridian.Bytes32) meridian.Bytes32 {
	receipt := meridian.Keccak256(
		receiptTypeHash.Bytes(),
		a.RequestCID.Bytes(),
		a.ResponseCID.Bytes(),
		a.SubgraphDeploymentID.Bytes(),
	)
	return meridian.Keccak256([]byte{0x19, 0x01}, domain.Bytes(), receipt.Bytes())
}

// Signer recovers the attesting address.
func (a *Attestation) Signer(domain meridian.Bytes32) (meridian.Address, error) {
	sig := make([]byte, 65)
	copy(sig[0:32], a.R[:])
	copy(sig[32:64], a.S[:])
	v := a.V
	if v >= 27 {
		v -= 27
	}
	sig[64] = v

	digest := a.Digest(domain)
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return meridian.Address{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return meridian.BytesToAddress(crypto.PubkeyToAddress(*pub).Bytes()), nil
}
