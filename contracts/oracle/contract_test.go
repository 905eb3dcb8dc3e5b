package oracle_test

import (
	"encoding/json"
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/oracle-contract/common"
	"github.com/nspcc-dev/oracle-contract/contracts/oracle/oracleconst"
	"github.com/nspcc-dev/oracle-contract/rpc/oracle"
	"github.com/stretchr/testify/require"
)

const oraclePath = "."

type oracleEnv struct {
	e      *neotest.Executor
	c      *neotest.Contract
	inv    *neotest.ContractInvoker
	owners []neotest.Signer
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func compileOracle(t *testing.T, e *neotest.Executor) *neotest.Contract {
	return neotest.CompileFile(t, e.CommitteeHash, oraclePath, path.Join(oraclePath, "config.yml"))
}

func deployData(owners []any, threshold int, price int64) []any {
	return []any{owners, threshold, price}
}

func newOracle(t *testing.T, n, threshold int, price int64) *oracleEnv {
	e := newExecutor(t)
	c := compileOracle(t, e)

	env := &oracleEnv{e: e, c: c}

	hashes := make([]any, n)
	for i := 0; i < n; i++ {
		acc := e.NewAccount(t)
		env.owners = append(env.owners, acc)
		hashes[i] = acc.ScriptHash()
	}

	e.DeployContract(t, c, deployData(hashes, threshold, price))
	env.inv = e.CommitteeInvoker(c.Hash)

	return env
}

func (env *oracleEnv) as(signers ...neotest.Signer) *neotest.ContractInvoker {
	return env.inv.WithSigners(signers...)
}

func (env *oracleEnv) dataID(t *testing.T, epoch, value int64) []byte {
	id, err := oracle.DataProposalID(big.NewInt(epoch), big.NewInt(value))
	require.NoError(t, err)
	return id
}

func (env *oracleEnv) priceID(t *testing.T, epoch, value int64) []byte {
	id, err := oracle.PriceProposalID(big.NewInt(epoch), big.NewInt(value))
	require.NoError(t, err)
	return id
}

func (env *oracleEnv) withdrawalID(t *testing.T, recipient util.Uint160, amount int64) []byte {
	id, err := oracle.WithdrawalID(recipient, big.NewInt(amount))
	require.NoError(t, err)
	return id
}

func eventNames(aer *state.AppExecResult) []string {
	names := make([]string, 0, len(aer.Events))
	for i := range aer.Events {
		names = append(names, aer.Events[i].Name)
	}
	return names
}

func TestDeploy(t *testing.T) {
	e := newExecutor(t)
	c := compileOracle(t, e)

	a, b := e.NewAccount(t).ScriptHash(), e.NewAccount(t).ScriptHash()

	tooMany := make([]any, oracleconst.MaxOwners+1)
	for i := range tooMany {
		tooMany[i] = util.Uint160{byte(i), byte(i >> 8)}
	}

	for _, tc := range []struct {
		name string
		data []any
		err  string
	}{
		{"empty owners", deployData([]any{}, 1, 0), oracleconst.ErrEmptyOwners},
		{"too many owners", deployData(tooMany, 1, 0), oracleconst.ErrTooManyOwners},
		{"duplicate owner", deployData([]any{a, b, a}, 2, 0), oracleconst.ErrDuplicateOwner},
		{"malformed owner", deployData([]any{a, []byte{1, 2, 3}}, 1, 0), oracleconst.ErrInvalidOwner},
		{"zero threshold", deployData([]any{a, b}, 0, 0), oracleconst.ErrThreshold},
		{"threshold above owners", deployData([]any{a, b}, 3, 0), oracleconst.ErrThreshold},
		{"negative price", deployData([]any{a, b}, 1, -1), oracleconst.ErrInitialPrice},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e.DeployContractCheckFAULT(t, c, tc.data, tc.err)
		})
	}

	e.DeployContract(t, c, deployData([]any{a, b}, 2, 10))

	inv := e.CommitteeInvoker(c.Hash)
	inv.Invoke(t, 0, "currentEpoch")
	inv.Invoke(t, 10, "currentPrice")
	inv.Invoke(t, 2, "requiredConfirmations")
	inv.Invoke(t, 0, "balance")
	inv.Invoke(t, 0, "lastDataUpdate")
	inv.Invoke(t, true, "isOwner", a)
	inv.Invoke(t, false, "isOwner", e.CommitteeHash)
	inv.Invoke(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(a.BytesBE()),
		stackitem.NewByteArray(b.BytesBE()),
	}), "owners")
	inv.Invoke(t, common.Version, "version")
}

func TestManifestEvents(t *testing.T) {
	c := compileOracle(t, newExecutor(t))

	names := make([]string, 0, len(c.Manifest.ABI.Events))
	for i := range c.Manifest.ABI.Events {
		names = append(names, c.Manifest.ABI.Events[i].Name)
	}

	require.ElementsMatch(t, []string{
		oracleconst.ConfirmationEvent,
		oracleconst.DataUpdatedEvent,
		oracleconst.PriceUpdatedEvent,
		oracleconst.DataReadEvent,
		oracleconst.WithdrawEvent,
		oracleconst.WithdrawFailedEvent,
	}, names)
}

func TestScenario(t *testing.T) {
	env := newOracle(t, 3, 2, 1)
	a, b := env.owners[0], env.owners[1]

	h := env.as(a).Invoke(t, 1, "proposeOrConfirmData", 42, 0)
	aer := env.as(a).CheckHalt(t, h)
	require.Equal(t, []string{oracleconst.ConfirmationEvent}, eventNames(aer))
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(a.ScriptHash().BytesBE()),
		stackitem.NewByteArray(env.dataID(t, 0, 42)),
	}), aer.Events[0].Item)

	env.inv.Invoke(t, 0, "currentEpoch")

	h = env.as(b).Invoke(t, 2, "proposeOrConfirmData", 42, 0)
	aer = env.as(b).CheckHalt(t, h)
	require.Equal(t, []string{oracleconst.ConfirmationEvent, oracleconst.DataUpdatedEvent}, eventNames(aer))
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.Make(42), stackitem.Make(1),
	}), aer.Events[1].Item)

	env.inv.Invoke(t, 1, "currentEpoch")

	reader := env.e.NewAccount(t)
	env.as(reader).Invoke(t, 42, "readData", reader.ScriptHash(), 1)
	env.inv.Invoke(t, 1, "balance")
	env.e.CheckGASBalance(t, env.c.Hash, big.NewInt(1))

	env.as(reader).InvokeFail(t, oracleconst.ErrPaymentMismatch, "readData", reader.ScriptHash(), 0)
	env.as(reader).InvokeFail(t, oracleconst.ErrPaymentMismatch, "readData", reader.ScriptHash(), 2)
	env.inv.Invoke(t, 1, "balance")

	x := env.e.NewAccount(t)
	xBalance := env.e.Chain.GetUtilityTokenBalance(x.ScriptHash())

	env.as(a).Invoke(t, 1, "withdraw", x.ScriptHash(), 1)
	h = env.as(b).Invoke(t, 2, "withdraw", x.ScriptHash(), 1)
	aer = env.as(b).CheckHalt(t, h)
	require.Contains(t, eventNames(aer), oracleconst.WithdrawEvent)
	withdrawals, err := oracle.WithdrawEventsFromApplicationLog(&result.ApplicationLog{
		Executions: []state.Execution{aer.Execution},
	})
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)
	require.Equal(t, x.ScriptHash(), withdrawals[0].Recipient)
	require.Equal(t, big.NewInt(1), withdrawals[0].Amount)

	env.inv.Invoke(t, 0, "balance")
	env.e.CheckGASBalance(t, env.c.Hash, big.NewInt(0))
	env.e.CheckGASBalance(t, x.ScriptHash(), new(big.Int).Add(xBalance, big.NewInt(1)))

	env.as(a).Invoke(t, 1, "withdraw", x.ScriptHash(), 1)
	h = env.as(b).Invoke(t, 0, "withdraw", x.ScriptHash(), 1)
	aer = env.as(b).CheckHalt(t, h)
	require.ErrorIs(t, oracle.ExecError(aer), oracle.ErrInsufficientFunds)
	require.NotContains(t, eventNames(aer), oracleconst.WithdrawEvent)

	env.inv.Invoke(t, 0, "balance")
	env.inv.Invoke(t, 0, "confirmations", env.withdrawalID(t, x.ScriptHash(), 1))
	env.inv.Invoke(t, false, "hasConfirmed", env.withdrawalID(t, x.ScriptHash(), 1), a.ScriptHash())
}

func TestProposeOrConfirm(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		env := newOracle(t, 3, 2, 0)
		stranger := env.e.NewAccount(t)

		env.as(stranger).InvokeFail(t, oracleconst.ErrUnauthorized, "proposeOrConfirmData", 1, 0)
		env.as(stranger).InvokeFail(t, oracleconst.ErrUnauthorized, "proposeOrConfirmPrice", 1, 0)
		env.as(stranger).InvokeFail(t, oracleconst.ErrUnauthorized, "proposeOrConfirmData", 1, 5)
	})

	t.Run("stale epoch", func(t *testing.T) {
		env := newOracle(t, 3, 2, 0)
		a, b, c := env.owners[0], env.owners[1], env.owners[2]

		env.as(a).InvokeFail(t, oracleconst.ErrStaleEpoch, "proposeOrConfirmData", 1, 1)

		env.as(a).Invoke(t, 1, "proposeOrConfirmData", 1, 0)
		env.as(b).Invoke(t, 2, "proposeOrConfirmData", 1, 0)

		env.as(c).InvokeFail(t, oracleconst.ErrStaleEpoch, "proposeOrConfirmData", 1, 0)
		env.as(c).InvokeFail(t, oracleconst.ErrStaleEpoch, "proposeOrConfirmPrice", 5, 0)
		env.as(c).Invoke(t, 1, "proposeOrConfirmData", 1, 1)
	})

	t.Run("repeated confirmation", func(t *testing.T) {
		env := newOracle(t, 3, 2, 0)
		a := env.owners[0]

		env.as(a).Invoke(t, 1, "proposeOrConfirmData", 7, 0)
		h := env.as(a).Invoke(t, 1, "proposeOrConfirmData", 7, 0)
		aer := env.as(a).CheckHalt(t, h)
		require.Empty(t, aer.Events)

		env.inv.Invoke(t, 0, "currentEpoch")
		env.inv.Invoke(t, 1, "confirmations", env.dataID(t, 0, 7))
		env.inv.Invoke(t, true, "hasConfirmed", env.dataID(t, 0, 7), a.ScriptHash())
	})

	t.Run("different values", func(t *testing.T) {
		env := newOracle(t, 3, 2, 0)
		a, b, c := env.owners[0], env.owners[1], env.owners[2]

		env.as(a).Invoke(t, 1, "proposeOrConfirmData", 7, 0)
		env.as(b).Invoke(t, 1, "proposeOrConfirmData", 8, 0)
		env.as(c).Invoke(t, 1, "proposeOrConfirmPrice", 7, 0)
		env.inv.Invoke(t, 0, "currentEpoch")

		env.as(b).Invoke(t, 2, "proposeOrConfirmData", 7, 0)
		env.inv.Invoke(t, 1, "currentEpoch")

		reader := env.e.NewAccount(t)
		env.as(reader).Invoke(t, 7, "readData", reader.ScriptHash(), 0)
	})

	t.Run("commit drops every pending proposal", func(t *testing.T) {
		env := newOracle(t, 3, 2, 0)
		a, b, c := env.owners[0], env.owners[1], env.owners[2]

		env.as(c).Invoke(t, 1, "proposeOrConfirmPrice", 100, 0)
		env.as(c).Invoke(t, 1, "proposeOrConfirmData", 9, 0)

		env.as(a).Invoke(t, 1, "proposeOrConfirmData", 5, 0)
		h := env.as(b).Invoke(t, 2, "proposeOrConfirmData", 5, 0)
		require.NotZero(t, env.as(b).CheckHalt(t, h).Events)

		env.inv.Invoke(t, 0, "confirmations", env.priceID(t, 0, 100))
		env.inv.Invoke(t, 0, "confirmations", env.dataID(t, 0, 9))
		env.inv.Invoke(t, 0, "confirmations", env.dataID(t, 0, 5))
		env.inv.Invoke(t, false, "hasConfirmed", env.priceID(t, 0, 100), c.ScriptHash())
		env.inv.Invoke(t, 0, "currentPrice")

		h = env.as(c).Invoke(t, 1, "proposeOrConfirmPrice", 100, 1)
		require.Len(t, env.as(c).CheckHalt(t, h).Events, 1)
	})

	t.Run("price", func(t *testing.T) {
		env := newOracle(t, 2, 2, 3)
		a, b := env.owners[0], env.owners[1]

		env.as(a).InvokeFail(t, oracleconst.ErrInvalidPrice, "proposeOrConfirmPrice", -1, 0)

		env.as(a).Invoke(t, 1, "proposeOrConfirmPrice", 0, 0)
		env.inv.Invoke(t, 3, "currentPrice")

		h := env.as(b).Invoke(t, 2, "proposeOrConfirmPrice", 0, 0)
		aer := env.as(b).CheckHalt(t, h)
		require.Equal(t, []string{oracleconst.ConfirmationEvent, oracleconst.PriceUpdatedEvent}, eventNames(aer))
		require.Equal(t, stackitem.NewArray([]stackitem.Item{
			stackitem.Make(0), stackitem.Make(1),
		}), aer.Events[1].Item)

		env.inv.Invoke(t, 0, "currentPrice")
		env.inv.Invoke(t, 1, "currentEpoch")

		reader := env.e.NewAccount(t)
		env.as(reader).Invoke(t, 0, "readData", reader.ScriptHash(), 0)
		env.inv.Invoke(t, 0, "balance")
	})

	t.Run("single confirmation", func(t *testing.T) {
		env := newOracle(t, 3, 1, 0)
		a, b := env.owners[0], env.owners[1]

		env.as(a).Invoke(t, 1, "proposeOrConfirmData", 11, 0)
		env.as(b).Invoke(t, 1, "proposeOrConfirmData", 12, 1)
		env.inv.Invoke(t, 2, "currentEpoch")

		env.inv.InvokeAndCheck(t, func(t testing.TB, stack []stackitem.Item) {
			require.Len(t, stack, 1)
			ts, err := stack[0].TryInteger()
			require.NoError(t, err)
			require.Positive(t, ts.Sign())
		}, "lastDataUpdate")
	})

	t.Run("several owner witnesses", func(t *testing.T) {
		env := newOracle(t, 3, 3, 0)
		a, b := env.owners[0], env.owners[1]

		env.as(b, a).Invoke(t, 1, "proposeOrConfirmData", 1, 0)
		env.inv.Invoke(t, true, "hasConfirmed", env.dataID(t, 0, 1), a.ScriptHash())
		env.inv.Invoke(t, false, "hasConfirmed", env.dataID(t, 0, 1), b.ScriptHash())
	})
}

func TestReadData(t *testing.T) {
	env := newOracle(t, 2, 2, 5)
	a := env.owners[0]

	reader := env.e.NewAccount(t)

	t.Run("payment mismatch", func(t *testing.T) {
		for _, payment := range []int{0, 4, 6} {
			env.as(reader).InvokeFail(t, oracleconst.ErrPaymentMismatch, "readData", reader.ScriptHash(), payment)
		}
	})

	t.Run("payer witness", func(t *testing.T) {
		env.as(a).InvokeFail(t, common.ErrWitnessFailed, "readData", reader.ScriptHash(), 5)
	})

	t.Run("insufficient payer funds", func(t *testing.T) {
		poor := env.e.NewAccount(t, 3)
		env.as(reader, poor).InvokeFail(t, oracleconst.ErrPaymentFailed, "readData", poor.ScriptHash(), 5)
	})

	t.Run("balance grows by payment", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			h := env.as(reader).Invoke(t, 0, "readData", reader.ScriptHash(), 5)
			aer := env.as(reader).CheckHalt(t, h)
			require.Contains(t, eventNames(aer), oracleconst.DataReadEvent)

			env.inv.Invoke(t, 5*i, "balance")
			env.e.CheckGASBalance(t, env.c.Hash, big.NewInt(int64(5*i)))
		}
	})
}

func TestDirectDeposit(t *testing.T) {
	env := newOracle(t, 2, 1, 5)

	gasHash, err := env.e.Chain.GetNativeContractScriptHash(nativenames.Gas)
	require.NoError(t, err)

	payer := env.e.NewAccount(t)
	gasInv := env.e.NewInvoker(gasHash, payer)

	gasInv.InvokeFail(t, "ABORT", "transfer", payer.ScriptHash(), env.c.Hash, 5, nil)
	gasInv.InvokeFail(t, "ABORT", "transfer", payer.ScriptHash(), env.c.Hash, 5, []byte("read"))

	env.inv.Invoke(t, 0, "balance")
	env.e.CheckGASBalance(t, env.c.Hash, big.NewInt(0))
}

func TestWithdraw(t *testing.T) {
	t.Run("invalid arguments", func(t *testing.T) {
		env := newOracle(t, 2, 2, 0)
		a := env.owners[0]
		x := env.e.NewAccount(t)

		env.as(x).InvokeFail(t, oracleconst.ErrUnauthorized, "withdraw", x.ScriptHash(), 1)
		env.as(a).InvokeFail(t, oracleconst.ErrInvalidAmount, "withdraw", x.ScriptHash(), 0)
		env.as(a).InvokeFail(t, oracleconst.ErrInvalidAmount, "withdraw", x.ScriptHash(), -1)
		env.as(a).InvokeFail(t, oracleconst.ErrInvalidRecipient, "withdraw", []byte{1, 2, 3}, 1)
	})

	t.Run("requests survive epoch changes", func(t *testing.T) {
		env := newOracle(t, 3, 2, 10)
		a, b, c := env.owners[0], env.owners[1], env.owners[2]
		x := env.e.NewAccount(t)

		env.as(x).Invoke(t, 0, "readData", x.ScriptHash(), 10)

		env.as(a).Invoke(t, 1, "withdraw", x.ScriptHash(), 10)

		env.as(b).Invoke(t, 1, "proposeOrConfirmData", 3, 0)
		env.as(c).Invoke(t, 2, "proposeOrConfirmData", 3, 0)
		env.inv.Invoke(t, 1, "currentEpoch")

		id := env.withdrawalID(t, x.ScriptHash(), 10)
		env.inv.Invoke(t, 1, "confirmations", id)
		env.inv.Invoke(t, true, "hasConfirmed", id, a.ScriptHash())

		env.as(c).Invoke(t, 2, "withdraw", x.ScriptHash(), 10)
		env.inv.Invoke(t, 0, "balance")
		env.inv.Invoke(t, 1, "currentEpoch")
	})

	t.Run("different requests", func(t *testing.T) {
		env := newOracle(t, 2, 2, 10)
		a, b := env.owners[0], env.owners[1]
		x, y := env.e.NewAccount(t), env.e.NewAccount(t)

		env.as(x).Invoke(t, 0, "readData", x.ScriptHash(), 10)

		env.as(a).Invoke(t, 1, "withdraw", x.ScriptHash(), 4)
		env.as(b).Invoke(t, 1, "withdraw", x.ScriptHash(), 5)
		env.as(b).Invoke(t, 1, "withdraw", y.ScriptHash(), 4)
		env.as(a).Invoke(t, 1, "withdraw", x.ScriptHash(), 4)
		env.inv.Invoke(t, 10, "balance")

		env.as(a).Invoke(t, 2, "withdraw", x.ScriptHash(), 5)
		env.inv.Invoke(t, 5, "balance")

		env.as(a).Invoke(t, 2, "withdraw", y.ScriptHash(), 4)
		env.inv.Invoke(t, 1, "balance")
	})

	t.Run("retry after insufficient funds", func(t *testing.T) {
		env := newOracle(t, 2, 2, 10)
		a, b := env.owners[0], env.owners[1]
		x := env.e.NewAccount(t)

		env.as(a).Invoke(t, 1, "withdraw", x.ScriptHash(), 10)
		h := env.as(b).Invoke(t, 0, "withdraw", x.ScriptHash(), 10)
		aer := env.as(b).CheckHalt(t, h)
		require.Contains(t, eventNames(aer), oracleconst.WithdrawFailedEvent)

		env.as(x).Invoke(t, 0, "readData", x.ScriptHash(), 10)

		env.as(b).Invoke(t, 1, "withdraw", x.ScriptHash(), 10)
		env.inv.Invoke(t, 10, "balance")
		env.as(a).Invoke(t, 2, "withdraw", x.ScriptHash(), 10)
		env.inv.Invoke(t, 0, "balance")
	})

	t.Run("recipient rejects payment", func(t *testing.T) {
		env := newOracle(t, 2, 2, 10)
		a, b := env.owners[0], env.owners[1]
		x := env.e.NewAccount(t)

		env.as(x).Invoke(t, 0, "readData", x.ScriptHash(), 10)

		// oracle refuses GAS outside of readData
		env.as(a).Invoke(t, 1, "withdraw", env.c.Hash, 10)
		h := env.as(b).InvokeFail(t, "ABORT", "withdraw", env.c.Hash, 10)
		require.ErrorIs(t, oracle.ExecError(env.e.GetTxExecResult(t, h)), oracle.ErrAborted)

		env.inv.Invoke(t, 10, "balance")
		env.e.CheckGASBalance(t, env.c.Hash, big.NewInt(10))

		id := env.withdrawalID(t, env.c.Hash, 10)
		env.inv.Invoke(t, 1, "confirmations", id)
		env.inv.Invoke(t, true, "hasConfirmed", id, a.ScriptHash())
		env.inv.Invoke(t, false, "hasConfirmed", id, b.ScriptHash())
	})
}

func TestUpdate(t *testing.T) {
	env := newOracle(t, 2, 1, 0)

	rawNEF, err := env.c.NEF.Bytes()
	require.NoError(t, err)
	rawManifest, err := json.Marshal(env.c.Manifest)
	require.NoError(t, err)

	env.as(env.owners[0]).InvokeFail(t, "only committee can update contract",
		"update", rawNEF, rawManifest, nil)
	env.inv.InvokeFail(t, common.ErrAlreadyUpdated, "update", rawNEF, rawManifest, nil)
}
