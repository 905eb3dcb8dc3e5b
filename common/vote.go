package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/interop/util"
)

// Ballot collects confirmations of a single governed decision.
type Ballot struct {
	// ID of the voting decision.
	ID []byte

	// Accounts of owners that have already confirmed the decision.
	Voters []interop.Hash160
}

// Vote adds a confirmation from the voter to the decision with the specific
// 'id' stored under the given prefix and returns the amount of unique voters
// for that decision. The second result is false if the voter has already
// confirmed the decision, such a repeated vote changes nothing.
func Vote(ctx storage.Context, prefix byte, id []byte, voter interop.Hash160) (int, bool) {
	key := ballotKey(prefix, id)
	ballot := getBallot(ctx, key, id)

	for i := range ballot.Voters {
		if BytesEqual(ballot.Voters[i], voter) {
			return len(ballot.Voters), false
		}
	}

	ballot.Voters = append(ballot.Voters, voter)
	SetSerialized(ctx, key, ballot)

	return len(ballot.Voters), true
}

// RemoveVotes clears the ballot of the decision that has been accepted
// or rejected.
func RemoveVotes(ctx storage.Context, prefix byte, id []byte) {
	storage.Delete(ctx, ballotKey(prefix, id))
}

// RemoveAllVotes clears every ballot stored under the given prefix.
func RemoveAllVotes(ctx storage.Context, prefix byte) {
	var keys [][]byte

	it := storage.Find(ctx, []byte{prefix}, storage.KeysOnly)
	for iterator.Next(it) {
		keys = append(keys, iterator.Value(it).([]byte))
	}

	for i := range keys {
		storage.Delete(ctx, keys[i])
	}
}

// Votes returns the list of owners that have confirmed the decision.
func Votes(ctx storage.Context, prefix byte, id []byte) []interop.Hash160 {
	return getBallot(ctx, ballotKey(prefix, id), id).Voters
}

// HasVoted checks whether the voter has confirmed the decision.
func HasVoted(ctx storage.Context, prefix byte, id []byte, voter interop.Hash160) bool {
	voters := Votes(ctx, prefix, id)
	for i := range voters {
		if BytesEqual(voters[i], voter) {
			return true
		}
	}

	return false
}

func ballotKey(prefix byte, id []byte) []byte {
	return append([]byte{prefix}, id...)
}

// getBallot returns deserialized ballot or an empty one if nobody voted yet.
func getBallot(ctx storage.Context, key, id []byte) Ballot {
	data := storage.Get(ctx, key)
	if data != nil {
		return std.Deserialize(data.([]byte)).(Ballot)
	}

	return Ballot{ID: id, Voters: []interop.Hash160{}}
}

// BytesEqual compares two slice of bytes by wrapping them into strings,
// which is necessary with new util.Equal interop behaviour, see neo-go#1176.
func BytesEqual(a []byte, b []byte) bool {
	return util.Equals(string(a), string(b))
}
