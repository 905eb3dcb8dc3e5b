package oracle

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Storage key prefixes of pending ballots.
const (
	UpdateBallotPrefix   = 'u'
	WithdrawBallotPrefix = 'w'
)

// CommonBallot is a contract-specific common.Ballot type kept in the
// contract storage for every pending proposal and withdrawal request.
type CommonBallot struct {
	ID     []byte
	Voters []util.Uint160
}

// FromStackItem retrieves fields of CommonBallot from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *CommonBallot) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	res.ID, err = arr[0].TryBytes()
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	voters, ok := arr[1].Value().([]stackitem.Item)
	if !ok {
		return errors.New("field Voters: not an array")
	}

	res.Voters = make([]util.Uint160, len(voters))
	for i := range voters {
		b, err := voters[i].TryBytes()
		if err != nil {
			return fmt.Errorf("field Voters: item %d: %w", i, err)
		}

		res.Voters[i], err = util.Uint160DecodeBytesBE(b)
		if err != nil {
			return fmt.Errorf("field Voters: item %d: %w", i, err)
		}
	}

	return nil
}

// IsBallotKey checks whether the contract storage key belongs to a pending
// ballot.
func IsBallotKey(key []byte) bool {
	return len(key) == 1+IDLen && (key[0] == UpdateBallotPrefix || key[0] == WithdrawBallotPrefix)
}

// DecodeBallot decodes pending ballot from the contract storage item.
func DecodeBallot(key, value []byte) (*CommonBallot, error) {
	if !IsBallotKey(key) {
		return nil, fmt.Errorf("not a ballot key %x", key)
	}

	item, err := stackitem.Deserialize(value)
	if err != nil {
		return nil, fmt.Errorf("deserialize ballot: %w", err)
	}

	res := new(CommonBallot)
	if err = res.FromStackItem(item); err != nil {
		return nil, err
	}

	return res, nil
}
