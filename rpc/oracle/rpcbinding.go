// Package oracle contains RPC wrappers for Governed Oracle contract.
package oracle

import (
	"errors"
	"fmt"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"math/big"
)

// ConfirmationEvent represents "Confirmation" event emitted by the contract.
type ConfirmationEvent struct {
	Owner util.Uint160
	ID []byte
}

// DataUpdatedEvent represents "DataUpdated" event emitted by the contract.
type DataUpdatedEvent struct {
	Value *big.Int
	Epoch *big.Int
}

// PriceUpdatedEvent represents "PriceUpdated" event emitted by the contract.
type PriceUpdatedEvent struct {
	Value *big.Int
	Epoch *big.Int
}

// DataReadEvent represents "DataRead" event emitted by the contract.
type DataReadEvent struct {
	From util.Uint160
	Amount *big.Int
}

// WithdrawEvent represents "Withdraw" event emitted by the contract.
type WithdrawEvent struct {
	Recipient util.Uint160
	Amount *big.Int
}

// WithdrawFailedEvent represents "WithdrawFailed" event emitted by the contract.
type WithdrawFailedEvent struct {
	Recipient util.Uint160
	Amount *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Balance invokes `balance` method of contract.
func (c *ContractReader) Balance() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "balance"))
}

// Confirmations invokes `confirmations` method of contract.
func (c *ContractReader) Confirmations(id []byte) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "confirmations", id))
}

// CurrentEpoch invokes `currentEpoch` method of contract.
func (c *ContractReader) CurrentEpoch() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "currentEpoch"))
}

// CurrentPrice invokes `currentPrice` method of contract.
func (c *ContractReader) CurrentPrice() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "currentPrice"))
}

// HasConfirmed invokes `hasConfirmed` method of contract.
func (c *ContractReader) HasConfirmed(id []byte, owner util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "hasConfirmed", id, owner))
}

// IsOwner invokes `isOwner` method of contract.
func (c *ContractReader) IsOwner(acc util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isOwner", acc))
}

// LastDataUpdate invokes `lastDataUpdate` method of contract.
func (c *ContractReader) LastDataUpdate() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "lastDataUpdate"))
}

// Owners invokes `owners` method of contract.
func (c *ContractReader) Owners() ([]util.Uint160, error) {
	return func (item stackitem.Item, err error) ([]util.Uint160, error) {
		if err != nil {
			return nil, err
		}
		return func (item stackitem.Item) ([]util.Uint160, error) {
			arr, ok := item.Value().([]stackitem.Item)
			if !ok {
				return nil, errors.New("not an array")
			}
			res := make([]util.Uint160, len(arr))
			for i := range res {
				res[i], err = func (item stackitem.Item) (util.Uint160, error) {
					b, err := item.TryBytes()
					if err != nil {
						return util.Uint160{}, err
					}
					u, err := util.Uint160DecodeBytesBE(b)
					if err != nil {
						return util.Uint160{}, err
					}
					return u, nil
				} (arr[i])
				if err != nil {
					return nil, fmt.Errorf("item %d: %w", i, err)
				}
			}
			return res, nil
		} (item)
	} (unwrap.Item(c.invoker.Call(c.hash, "owners")))
}

// RequiredConfirmations invokes `requiredConfirmations` method of contract.
func (c *ContractReader) RequiredConfirmations() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "requiredConfirmations"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// ProposeOrConfirmData creates a transaction invoking `proposeOrConfirmData` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) ProposeOrConfirmData(value *big.Int, epoch *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "proposeOrConfirmData", value, epoch)
}

// ProposeOrConfirmDataTransaction creates a transaction invoking `proposeOrConfirmData` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ProposeOrConfirmDataTransaction(value *big.Int, epoch *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "proposeOrConfirmData", value, epoch)
}

// ProposeOrConfirmDataUnsigned creates a transaction invoking `proposeOrConfirmData` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) ProposeOrConfirmDataUnsigned(value *big.Int, epoch *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "proposeOrConfirmData", nil, value, epoch)
}

// ProposeOrConfirmPrice creates a transaction invoking `proposeOrConfirmPrice` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) ProposeOrConfirmPrice(value *big.Int, epoch *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "proposeOrConfirmPrice", value, epoch)
}

// ProposeOrConfirmPriceTransaction creates a transaction invoking `proposeOrConfirmPrice` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ProposeOrConfirmPriceTransaction(value *big.Int, epoch *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "proposeOrConfirmPrice", value, epoch)
}

// ProposeOrConfirmPriceUnsigned creates a transaction invoking `proposeOrConfirmPrice` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) ProposeOrConfirmPriceUnsigned(value *big.Int, epoch *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "proposeOrConfirmPrice", nil, value, epoch)
}

// ReadData creates a transaction invoking `readData` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) ReadData(from util.Uint160, payment *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "readData", from, payment)
}

// ReadDataTransaction creates a transaction invoking `readData` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ReadDataTransaction(from util.Uint160, payment *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "readData", from, payment)
}

// ReadDataUnsigned creates a transaction invoking `readData` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) ReadDataUnsigned(from util.Uint160, payment *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "readData", nil, from, payment)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, script, manifest, data)
}

// Withdraw creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Withdraw(recipient util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdraw", recipient, amount)
}

// WithdrawTransaction creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawTransaction(recipient util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdraw", recipient, amount)
}

// WithdrawUnsigned creates a transaction invoking `withdraw` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) WithdrawUnsigned(recipient util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdraw", nil, recipient, amount)
}

// ConfirmationEventsFromApplicationLog retrieves a set of all emitted events
// with "Confirmation" name from the provided [result.ApplicationLog].
func ConfirmationEventsFromApplicationLog(log *result.ApplicationLog) ([]*ConfirmationEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*ConfirmationEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Confirmation" {
				continue
			}
			event := new(ConfirmationEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize ConfirmationEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to ConfirmationEvent or
// returns an error if it's not possible to do to so.
func (e *ConfirmationEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Owner, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	index++
	e.ID, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	return nil
}

// DataUpdatedEventsFromApplicationLog retrieves a set of all emitted events
// with "DataUpdated" name from the provided [result.ApplicationLog].
func DataUpdatedEventsFromApplicationLog(log *result.ApplicationLog) ([]*DataUpdatedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*DataUpdatedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "DataUpdated" {
				continue
			}
			event := new(DataUpdatedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize DataUpdatedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to DataUpdatedEvent or
// returns an error if it's not possible to do to so.
func (e *DataUpdatedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Value, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Value: %w", err)
	}

	index++
	e.Epoch, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Epoch: %w", err)
	}

	return nil
}

// PriceUpdatedEventsFromApplicationLog retrieves a set of all emitted events
// with "PriceUpdated" name from the provided [result.ApplicationLog].
func PriceUpdatedEventsFromApplicationLog(log *result.ApplicationLog) ([]*PriceUpdatedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*PriceUpdatedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "PriceUpdated" {
				continue
			}
			event := new(PriceUpdatedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize PriceUpdatedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to PriceUpdatedEvent or
// returns an error if it's not possible to do to so.
func (e *PriceUpdatedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Value, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Value: %w", err)
	}

	index++
	e.Epoch, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Epoch: %w", err)
	}

	return nil
}

// DataReadEventsFromApplicationLog retrieves a set of all emitted events
// with "DataRead" name from the provided [result.ApplicationLog].
func DataReadEventsFromApplicationLog(log *result.ApplicationLog) ([]*DataReadEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*DataReadEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "DataRead" {
				continue
			}
			event := new(DataReadEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize DataReadEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to DataReadEvent or
// returns an error if it's not possible to do to so.
func (e *DataReadEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.From, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// WithdrawEventsFromApplicationLog retrieves a set of all emitted events
// with "Withdraw" name from the provided [result.ApplicationLog].
func WithdrawEventsFromApplicationLog(log *result.ApplicationLog) ([]*WithdrawEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*WithdrawEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Withdraw" {
				continue
			}
			event := new(WithdrawEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize WithdrawEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to WithdrawEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Recipient, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Recipient: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// WithdrawFailedEventsFromApplicationLog retrieves a set of all emitted events
// with "WithdrawFailed" name from the provided [result.ApplicationLog].
func WithdrawFailedEventsFromApplicationLog(log *result.ApplicationLog) ([]*WithdrawFailedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*WithdrawFailedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "WithdrawFailed" {
				continue
			}
			event := new(WithdrawFailedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize WithdrawFailedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to WithdrawFailedEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawFailedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Recipient, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Recipient: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}
