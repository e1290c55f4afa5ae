package model

import (
	"context"
	"encoding/json"
)

// SignatureParty identifies which side of an escrow agreement is signing.
type SignatureParty string

const (
	PartyA SignatureParty = "partyA"
	PartyB SignatureParty = "partyB"
)

// DeployedContract is one deployment record with per-party signature tracking.
type DeployedContract struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ContractAddress string          `json:"contract_address"`
	ABI             json.RawMessage `json:"abi,omitempty"`
	Bytecode        string          `json:"bytecode,omitempty"`
	ContractType    string          `json:"contract_type"`
	PartyA          string          `json:"party_a"`
	PartyB          string          `json:"party_b,omitempty"`
	DeployedAt      string          `json:"deployed_at"`
	TransactionHash string          `json:"transaction_hash,omitempty"`
	NetworkID       string          `json:"network_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	SourceCode      string          `json:"source_code,omitempty"`

	PartyASigned    bool   `json:"party_a_signed"`
	PartyBSigned    bool   `json:"party_b_signed"`
	PartyAAddress   string `json:"party_a_address,omitempty"`
	PartyBAddress   string `json:"party_b_address,omitempty"`
	PartyASignature string `json:"party_a_signature,omitempty"`
	PartyBSignature string `json:"party_b_signature,omitempty"`
}

// ContractRepository stores deployment records.
type ContractRepository interface {
	// Save upserts a contract record keyed by its ID.
	Save(ctx context.Context, contract *DeployedContract) error

	// Get returns the record for the given ID.
	Get(ctx context.Context, id string) (*DeployedContract, error)

	// List returns all stored records.
	List(ctx context.Context) ([]*DeployedContract, error)

	// Delete removes the record for the given ID.
	Delete(ctx context.Context, id string) error

	// SetSignature records a party's signature and marks that party as signed.
	SetSignature(ctx context.Context, id string, party SignatureParty, address, signature string) error
}
