package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/oracle-contract/rpc/oracle"
	"go.uber.org/zap"
)

var errMissingLogger = errors.New("missing logger")

// Blockchain groups services provided by particular Neo blockchain network
// that are required to check the oracle deployment.
type Blockchain interface {
	// GetContractStateByHash returns network state of the smart contract by its
	// address. It returns error with 'Unknown contract' substring if requested
	// contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Deployer sends contract deployment transactions. It is implemented by
// management.Contract of the neo-go RPC client.
type Deployer interface {
	Deploy(exe *nef.File, manif *manifest.Manifest, data any) (util.Uint256, uint32, error)
}

// Waiter awaits transaction execution. It is implemented by actor.Actor of
// the neo-go RPC client.
type Waiter interface {
	WaitAny(ctx context.Context, vub uint32, hashes ...util.Uint256) (*state.AppExecResult, error)
}

// Prm groups all parameters of the oracle deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance the oracle is deployed to.
	Blockchain Blockchain

	Deployer Deployer
	Waiter   Waiter

	// Account sending the deployment transaction. Together with the NEF
	// checksum and the manifest name it determines the contract address.
	Sender util.Uint160

	NEF      nef.File
	Manifest manifest.Manifest

	Params OracleParams
}

// Deploy deploys the Governed Oracle contract and returns its address. If
// the contract is already deployed by Prm.Sender, Deploy does nothing.
//
// Parameters are validated before anything is sent to the network. Deploy
// aborts when the context is done, the deployment transaction may still be
// accepted by the network in this case.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	if prm.Logger == nil {
		return util.Uint160{}, errMissingLogger
	}

	err := prm.Params.Validate()
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid oracle parameters: %w", err)
	}

	addr := state.CreateContractHash(prm.Sender, prm.NEF.Checksum, prm.Manifest.Name)
	l := prm.Logger.With(zap.Stringer("address", addr))

	st, err := prm.Blockchain.GetContractStateByHash(addr)
	if err == nil && st != nil {
		l.Info("oracle contract is already deployed, skip")
		return addr, nil
	}
	if err != nil && !isErrContractNotFound(err) {
		return util.Uint160{}, fmt.Errorf("get oracle contract state: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return util.Uint160{}, err
	}

	l.Info("deploying oracle contract...",
		zap.Int("owners", len(prm.Params.Owners)),
		zap.Int("threshold", prm.Params.Threshold),
		zap.Int64("price", prm.Params.Price))

	txHash, vub, err := prm.Deployer.Deploy(&prm.NEF, &prm.Manifest, prm.Params.DeployData())
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send oracle deployment transaction: %w", err)
	}

	l.Debug("oracle deployment transaction sent, waiting...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	res, err := prm.Waiter.WaitAny(ctx, vub, txHash)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for oracle deployment transaction %s: %w", txHash.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return util.Uint160{}, fmt.Errorf("oracle deployment transaction %s failed: %w",
			txHash.StringLE(), oracle.ExecError(res))
	}

	l.Info("oracle contract successfully deployed", zap.Stringer("tx", txHash))

	return addr, nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}
