package oracle

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/oracle-contract/common"
	"github.com/nspcc-dev/oracle-contract/contracts/oracle/oracleconst"
)

const (
	ownersKey     = "owners"
	thresholdKey  = "threshold"
	epochKey      = "epoch"
	priceKey      = "price"
	dataKey       = "data"
	lastUpdateKey = "lastUpdate"
	balanceKey    = "balance"

	// amount of the read payment being transferred, set only while
	// ReadData waits for GAS.
	pendingReadKey = "pendingRead"

	updateBallotPrefix   = 'u'
	withdrawBallotPrefix = 'w'
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owners    []interop.Hash160
		threshold int
		price     int
	})

	checkConfig(args.owners, args.threshold, args.price)

	common.SetSerialized(ctx, ownersKey, args.owners)
	storage.Put(ctx, thresholdKey, args.threshold)
	storage.Put(ctx, priceKey, args.price)
	storage.Put(ctx, epochKey, 0)
	storage.Put(ctx, dataKey, 0)
	storage.Put(ctx, balanceKey, 0)

	runtime.Log("oracle contract initialized")
}

func checkConfig(owners []interop.Hash160, threshold, price int) {
	if len(owners) == 0 {
		panic(oracleconst.ErrEmptyOwners)
	}

	if len(owners) > oracleconst.MaxOwners {
		panic(oracleconst.ErrTooManyOwners)
	}

	for i := range owners {
		if len(owners[i]) != interop.Hash160Len {
			panic(oracleconst.ErrInvalidOwner)
		}

		for j := i + 1; j < len(owners); j++ {
			if common.BytesEqual(owners[i], owners[j]) {
				panic(oracleconst.ErrDuplicateOwner)
			}
		}
	}

	if threshold < 1 || threshold > len(owners) {
		panic(oracleconst.ErrThreshold)
	}

	if price < 0 {
		panic(oracleconst.ErrInitialPrice)
	}
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("oracle contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// It accepts GAS transferred by ReadData only.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !common.BytesEqual(caller, []byte(gas.Hash)) {
		common.AbortWithMessage(oracleconst.ErrDirectDeposit)
	}

	ctx := storage.GetReadOnlyContext()
	if amount <= 0 || common.GetInt(ctx, pendingReadKey) != amount {
		common.AbortWithMessage(oracleconst.ErrDirectDeposit)
	}
}

// ProposeOrConfirmData confirms the proposal to set the stored value in the
// given epoch on behalf of the owner that has witnessed the invocation. The
// proposal is opened by the first confirmation. Once the number of distinct
// owners reaches RequiredConfirmations, the value is stored, the epoch is
// incremented and all pending data and price proposals are dropped.
//
// It returns the number of confirmations collected by the proposal. A repeated
// confirmation from the same owner is not counted.
//
// It produces Confirmation notification for a new confirmation and DataUpdated
// notification when the value is stored.
func ProposeOrConfirmData(value, epoch int) int {
	return proposeOrConfirm(oracleconst.KindData, value, epoch)
}

// ProposeOrConfirmPrice is like ProposeOrConfirmData but sets the price of
// ReadData. The price can't be negative.
//
// It produces Confirmation notification for a new confirmation and
// PriceUpdated notification when the price is changed.
func ProposeOrConfirmPrice(value, epoch int) int {
	return proposeOrConfirm(oracleconst.KindPrice, value, epoch)
}

func proposeOrConfirm(kind, value, epoch int) int {
	ctx := storage.GetContext()

	owner := common.FindInvoker(getOwners(ctx))
	if len(owner) == 0 {
		panic(oracleconst.ErrUnauthorized)
	}

	current := common.GetInt(ctx, epochKey)
	if epoch != current {
		panic(oracleconst.ErrStaleEpoch)
	}

	if kind == oracleconst.KindPrice && value < 0 {
		panic(oracleconst.ErrInvalidPrice)
	}

	id := updateID(kind, current, value)

	n, added := common.Vote(ctx, updateBallotPrefix, id, owner)
	if added {
		runtime.Notify(oracleconst.ConfirmationEvent, owner, id)
	}

	if n < common.GetInt(ctx, thresholdKey) {
		return n
	}

	next := current + 1

	storage.Put(ctx, epochKey, next)
	common.RemoveAllVotes(ctx, updateBallotPrefix)

	if kind == oracleconst.KindData {
		storage.Put(ctx, dataKey, value)
		storage.Put(ctx, lastUpdateKey, runtime.GetTime())
		runtime.Notify(oracleconst.DataUpdatedEvent, value, next)
	} else {
		storage.Put(ctx, priceKey, value)
		runtime.Notify(oracleconst.PriceUpdatedEvent, value, next)
	}

	return n
}

// ReadData returns the stored value. Payment must be equal to the current
// price, it is transferred in GAS from the specified account to the oracle and
// added to its balance. Transaction must be witnessed by the paying account.
//
// It produces DataRead notification.
func ReadData(from interop.Hash160, payment int) int {
	ctx := storage.GetContext()

	if payment != common.GetInt(ctx, priceKey) {
		panic(oracleconst.ErrPaymentMismatch)
	}

	if payment > 0 {
		common.CheckWitness(from)

		storage.Put(ctx, pendingReadKey, payment)
		if !gas.Transfer(from, runtime.GetExecutingScriptHash(), payment, nil) {
			panic(oracleconst.ErrPaymentFailed)
		}
		storage.Delete(ctx, pendingReadKey)

		storage.Put(ctx, balanceKey, common.GetInt(ctx, balanceKey)+payment)
	}

	runtime.Notify(oracleconst.DataReadEvent, from, payment)

	return common.GetInt(ctx, dataKey)
}

// Withdraw confirms the request to transfer the amount of collected GAS to
// the recipient on behalf of the owner that has witnessed the invocation.
// Requests are identified by the recipient and the amount and do not depend
// on the epoch.
//
// Once the request is confirmed by RequiredConfirmations distinct owners, the
// amount is transferred and the request is dropped. If the balance is not
// enough at this moment, the request is dropped without transfer and 0 is
// returned, owners have to confirm it again to retry. Otherwise the number
// of collected confirmations is returned.
//
// It produces Confirmation notification for a new confirmation, Withdraw
// notification on successful transfer and WithdrawFailed notification if
// the balance is not enough.
func Withdraw(recipient interop.Hash160, amount int) int {
	ctx := storage.GetContext()

	owner := common.FindInvoker(getOwners(ctx))
	if len(owner) == 0 {
		panic(oracleconst.ErrUnauthorized)
	}

	if len(recipient) != interop.Hash160Len {
		panic(oracleconst.ErrInvalidRecipient)
	}

	if amount <= 0 {
		panic(oracleconst.ErrInvalidAmount)
	}

	id := withdrawID(recipient, amount)

	n, added := common.Vote(ctx, withdrawBallotPrefix, id, owner)
	if added {
		runtime.Notify(oracleconst.ConfirmationEvent, owner, id)
	}

	if n < common.GetInt(ctx, thresholdKey) {
		return n
	}

	common.RemoveVotes(ctx, withdrawBallotPrefix, id)

	balance := common.GetInt(ctx, balanceKey)
	if balance < amount {
		runtime.Log(oracleconst.ErrInsufficientFunds)
		runtime.Notify(oracleconst.WithdrawFailedEvent, recipient, amount)
		return 0
	}

	storage.Put(ctx, balanceKey, balance-amount)

	if !gas.Transfer(runtime.GetExecutingScriptHash(), recipient, amount, nil) {
		panic(oracleconst.ErrTransferFailed)
	}

	runtime.Log("funds have been transferred")
	runtime.Notify(oracleconst.WithdrawEvent, recipient, amount)

	return n
}

// CurrentEpoch returns the epoch proposals must be made for.
func CurrentEpoch() int {
	return common.GetInt(storage.GetReadOnlyContext(), epochKey)
}

// CurrentPrice returns the payment required by ReadData.
func CurrentPrice() int {
	return common.GetInt(storage.GetReadOnlyContext(), priceKey)
}

// RequiredConfirmations returns the number of distinct owners that must
// confirm any governed action.
func RequiredConfirmations() int {
	return common.GetInt(storage.GetReadOnlyContext(), thresholdKey)
}

// Owners returns accounts of the oracle owners.
func Owners() []interop.Hash160 {
	return getOwners(storage.GetReadOnlyContext())
}

// IsOwner checks whether the account is an oracle owner.
func IsOwner(acc interop.Hash160) bool {
	owners := getOwners(storage.GetReadOnlyContext())
	for i := range owners {
		if common.BytesEqual(owners[i], acc) {
			return true
		}
	}

	return false
}

// Balance returns the amount of GAS collected by paid reads and not
// withdrawn yet.
func Balance() int {
	return common.GetInt(storage.GetReadOnlyContext(), balanceKey)
}

// LastDataUpdate returns the timestamp (in milliseconds) of the block the
// stored value was last changed in, 0 if it has never been changed.
func LastDataUpdate() int {
	return common.GetInt(storage.GetReadOnlyContext(), lastUpdateKey)
}

// HasConfirmed checks whether the owner has confirmed the pending proposal
// or withdrawal request with the given ID.
func HasConfirmed(id []byte, owner interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()

	return common.HasVoted(ctx, updateBallotPrefix, id, owner) ||
		common.HasVoted(ctx, withdrawBallotPrefix, id, owner)
}

// Confirmations returns the number of owners that have confirmed the pending
// proposal or withdrawal request with the given ID.
func Confirmations(id []byte) int {
	ctx := storage.GetReadOnlyContext()

	n := len(common.Votes(ctx, updateBallotPrefix, id))
	if n == 0 {
		n = len(common.Votes(ctx, withdrawBallotPrefix, id))
	}

	return n
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func getOwners(ctx storage.Context) []interop.Hash160 {
	return std.Deserialize(storage.Get(ctx, ownersKey).([]byte)).([]interop.Hash160)
}

// updateID identifies data and price proposals. The epoch is a part of the
// ID, so confirmations never outlive the epoch they were made in.
func updateID(kind, epoch, value int) []byte {
	return crypto.Sha256(std.Serialize([]any{kind, epoch, value}))
}

func withdrawID(recipient interop.Hash160, amount int) []byte {
	return crypto.Sha256(std.Serialize([]any{oracleconst.KindWithdraw, recipient, amount}))
}
