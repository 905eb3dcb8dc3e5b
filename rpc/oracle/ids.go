package oracle

import (
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/oracle-contract/contracts/oracle/oracleconst"
)

const (
	// KindData is the kind of proposals updating the stored value.
	KindData = oracleconst.KindData
	// KindPrice is the kind of proposals updating the read price.
	KindPrice = oracleconst.KindPrice
	// KindWithdraw is the kind of withdrawal requests.
	KindWithdraw = oracleconst.KindWithdraw
)

// IDLen is the length of proposal and withdrawal request IDs.
const IDLen = 32

// DataProposalID returns the ID of the proposal to set the stored value in
// the given epoch, the same one the contract emits in Confirmation event.
func DataProposalID(epoch, value *big.Int) ([]byte, error) {
	return UpdateProposalID(KindData, epoch, value)
}

// PriceProposalID returns the ID of the proposal to set the price in the
// given epoch.
func PriceProposalID(epoch, value *big.Int) ([]byte, error) {
	return UpdateProposalID(KindPrice, epoch, value)
}

// UpdateProposalID returns the ID of the data or price proposal.
func UpdateProposalID(kind int, epoch, value *big.Int) ([]byte, error) {
	if kind != KindData && kind != KindPrice {
		return nil, fmt.Errorf("unknown proposal kind %d", kind)
	}

	return ballotID(
		stackitem.Make(kind),
		stackitem.NewBigInteger(epoch),
		stackitem.NewBigInteger(value),
	)
}

// WithdrawalID returns the ID of the request to transfer the amount of GAS
// to the recipient. It doesn't depend on the epoch.
func WithdrawalID(recipient util.Uint160, amount *big.Int) ([]byte, error) {
	return ballotID(
		stackitem.Make(KindWithdraw),
		stackitem.NewByteArray(recipient.BytesBE()),
		stackitem.NewBigInteger(amount),
	)
}

func ballotID(items ...stackitem.Item) ([]byte, error) {
	data, err := stackitem.Serialize(stackitem.NewArray(items))
	if err != nil {
		return nil, fmt.Errorf("can't serialize ballot ID tuple: %w", err)
	}

	return hash.Sha256(data).BytesBE(), nil
}

// FormatID returns text representation of the proposal or withdrawal
// request ID.
func FormatID(id []byte) string {
	return base58.Encode(id)
}

// ParseID decodes ID from its text representation.
func ParseID(s string) ([]byte, error) {
	id, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 ID: %w", err)
	}

	if len(id) != IDLen {
		return nil, fmt.Errorf("invalid ID length %d, expected %d", len(id), IDLen)
	}

	return id, nil
}
