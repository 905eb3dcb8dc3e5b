package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/oracle-contract/rpc/oracle"
)

// wrapper over rpcNeo providing oracle services needed for current command.
type remoteBlockchain struct {
	rpc    *rpcclient.Client
	oracle *oracle.ContractReader
}

// newRemoteBlockChain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within 15
// timeout.
func newRemoteBlockChain(blockChainRPCEndpoint string, contract util.Uint160) (*remoteBlockchain, error) {
	c, err := rpcclient.New(context.Background(), blockChainRPCEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init RPC client: %w", err)
	}

	_, err = c.GetContractStateByHash(contract)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("get state of the oracle contract '%s': %w", contract.StringLE(), err)
	}

	return &remoteBlockchain{
		rpc:    c,
		oracle: oracle.NewReader(invoker.New(c, nil), contract),
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// iterateContractStorage iterates over all storage items of the Neo smart
// contract referenced by given address and passes them into f.
// iterateContractStorage breaks on any f's error and returns it.
func (x *remoteBlockchain) iterateContractStorage(contract util.Uint160, f func(key, value []byte) error) error {
	nLatestBlock, err := x.rpc.GetBlockCount()
	if err != nil {
		return fmt.Errorf("get number of the latest block: %w", err)
	}

	stateRoot, err := x.rpc.GetStateRootByHeight(nLatestBlock - 1)
	if err != nil {
		return fmt.Errorf("get state root at penult block #%d: %w", nLatestBlock-1, err)
	}

	var start []byte

	for {
		res, err := x.rpc.FindStates(stateRoot.Root, contract, nil, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the requested contract at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}

// pendingBallots returns all proposals and withdrawal requests waiting for
// confirmations.
func (x *remoteBlockchain) pendingBallots(contract util.Uint160) ([]*oracle.CommonBallot, error) {
	var res []*oracle.CommonBallot

	err := x.iterateContractStorage(contract, func(key, value []byte) error {
		if !oracle.IsBallotKey(key) {
			return nil
		}

		b, err := oracle.DecodeBallot(key, value)
		if err != nil {
			return fmt.Errorf("ballot %x: %w", key, err)
		}

		res = append(res, b)
		return nil
	})

	return res, err
}
