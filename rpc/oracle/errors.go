package oracle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/oracle-contract/common"
	"github.com/nspcc-dev/oracle-contract/contracts/oracle/oracleconst"
)

// Errors reported by the contract. Use errors.Is to check the result of
// ExecError and InvokeError against them.
var (
	ErrConfig            = errors.New(oracleconst.ErrConfig)
	ErrUnauthorized      = errors.New(oracleconst.ErrUnauthorized)
	ErrStaleEpoch        = errors.New(oracleconst.ErrStaleEpoch)
	ErrInvalidPrice      = errors.New(oracleconst.ErrInvalidPrice)
	ErrPaymentMismatch   = errors.New(oracleconst.ErrPaymentMismatch)
	ErrPaymentFailed     = errors.New(oracleconst.ErrPaymentFailed)
	ErrInvalidRecipient  = errors.New(oracleconst.ErrInvalidRecipient)
	ErrInvalidAmount     = errors.New(oracleconst.ErrInvalidAmount)
	ErrInsufficientFunds = errors.New(oracleconst.ErrInsufficientFunds)
	ErrTransferFailed    = errors.New(oracleconst.ErrTransferFailed)
	ErrWitness           = errors.New(common.ErrWitnessFailed)
)

// ErrAborted is returned for executions stopped by ABORT. ABORT carries no
// message, the reason is only written to the execution logs. Within the
// oracle it happens in two cases: onNEP17Payment refuses GAS sent outside of
// readData, or a confirmed withdrawal is transferred to a contract whose
// onNEP17Payment rejects GAS (the oracle itself included). In the latter
// case the withdrawal request keeps its confirmations.
var ErrAborted = errors.New("execution aborted")

// MaxOwners is the maximum number of owners accepted on deployment, larger
// owner lists fail with ErrConfig.
const MaxOwners = oracleconst.MaxOwners

// ErrExecution is returned for failed executions that can't be attributed
// to any known contract error.
var ErrExecution = errors.New("oracle execution failed")

// Order matters: configuration messages include other messages.
var faults = []struct {
	msg string
	err error
}{
	{oracleconst.ErrConfig, ErrConfig},
	{oracleconst.ErrUnauthorized, ErrUnauthorized},
	{oracleconst.ErrStaleEpoch, ErrStaleEpoch},
	{oracleconst.ErrInvalidPrice, ErrInvalidPrice},
	{oracleconst.ErrPaymentMismatch, ErrPaymentMismatch},
	{oracleconst.ErrPaymentFailed, ErrPaymentFailed},
	{oracleconst.ErrInvalidRecipient, ErrInvalidRecipient},
	{oracleconst.ErrInvalidAmount, ErrInvalidAmount},
	{oracleconst.ErrTransferFailed, ErrTransferFailed},
	{common.ErrWitnessFailed, ErrWitness},
	{"ABORT", ErrAborted},
}

// ExecError returns an error describing a failed transaction execution or
// nil if the transaction has succeeded. Withdrawal request dropped because of
// insufficient balance doesn't fail the transaction, but ExecError reports it
// as ErrInsufficientFunds.
func ExecError(res *state.AppExecResult) error {
	if res == nil {
		return errors.New("nil execution result")
	}

	if res.VMState != vmstate.Halt {
		return faultError(res.FaultException)
	}

	for i := range res.Events {
		if res.Events[i].Name != oracleconst.WithdrawFailedEvent {
			continue
		}

		ev := new(WithdrawFailedEvent)
		if err := ev.FromStackItem(res.Events[i].Item); err != nil {
			return fmt.Errorf("invalid %s event: %w", oracleconst.WithdrawFailedEvent, err)
		}

		return fmt.Errorf("%w: can't withdraw %s to %s",
			ErrInsufficientFunds, ev.Amount, ev.Recipient.StringLE())
	}

	return nil
}

// InvokeError is like ExecError but checks test invocation result.
func InvokeError(res *result.Invoke) error {
	if res == nil {
		return errors.New("nil invocation result")
	}

	if res.State != vmstate.Halt.String() {
		return faultError(res.FaultException)
	}

	return nil
}

func faultError(exception string) error {
	for i := range faults {
		if strings.Contains(exception, faults[i].msg) {
			return fmt.Errorf("%w: %s", faults[i].err, exception)
		}
	}

	return fmt.Errorf("%w: %s", ErrExecution, exception)
}
