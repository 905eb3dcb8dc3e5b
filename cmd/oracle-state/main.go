package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/oracle-contract/rpc/oracle"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "oracle-state",
	Short:        "Inspect Governed Oracle contract state",
	Long:         "Print the state of Governed Oracle contract and its pending proposals from a Neo RPC node",
	SilenceUsage: true,
	RunE:         showState,
}

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Show confirmations of data or price proposal in the current epoch",
	RunE:  showProposal,
}

var ballotsCmd = &cobra.Command{
	Use:   "ballots",
	Short: "List all pending ballots (requires state service on the RPC node)",
	RunE:  showBallots,
}

const (
	rpcFlag      = "rpc"
	contractFlag = "contract"
	dataFlag     = "data"
	priceFlag    = "price"
)

func init() {
	rootCmd.PersistentFlags().String(rpcFlag, "", "Network address of the Neo RPC server")
	rootCmd.PersistentFlags().String(contractFlag, "", "Oracle contract address or LE script hash")
	_ = rootCmd.MarkPersistentFlagRequired(rpcFlag)
	_ = rootCmd.MarkPersistentFlagRequired(contractFlag)

	proposalCmd.Flags().String(dataFlag, "", "Value of the data proposal")
	proposalCmd.Flags().String(priceFlag, "", "Value of the price proposal")
	proposalCmd.MarkFlagsMutuallyExclusive(dataFlag, priceFlag)

	rootCmd.AddCommand(proposalCmd, ballotsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func connect(cmd *cobra.Command) (*remoteBlockchain, util.Uint160, error) {
	endpoint, _ := cmd.Flags().GetString(rpcFlag)
	s, _ := cmd.Flags().GetString(contractFlag)

	contract, err := parseContract(s)
	if err != nil {
		return nil, util.Uint160{}, err
	}

	b, err := newRemoteBlockChain(endpoint, contract)
	if err != nil {
		return nil, util.Uint160{}, fmt.Errorf("init remote blockchain: %w", err)
	}

	return b, contract, nil
}

func showState(cmd *cobra.Command, _ []string) error {
	b, _, err := connect(cmd)
	if err != nil {
		return err
	}

	defer b.close()

	return printState(cmd.OutOrStdout(), b.oracle)
}

func showProposal(cmd *cobra.Command, _ []string) error {
	kind, value := oracle.KindData, ""
	if v, _ := cmd.Flags().GetString(dataFlag); v != "" {
		value = v
	} else if v, _ = cmd.Flags().GetString(priceFlag); v != "" {
		kind, value = oracle.KindPrice, v
	} else {
		return errors.New("either --data or --price must be set")
	}

	b, _, err := connect(cmd)
	if err != nil {
		return err
	}

	defer b.close()

	epoch, err := b.oracle.CurrentEpoch()
	if err != nil {
		return fmt.Errorf("get current epoch: %w", err)
	}

	return printProposal(cmd.OutOrStdout(), b.oracle, kind, epoch, value)
}

func showBallots(cmd *cobra.Command, _ []string) error {
	b, contract, err := connect(cmd)
	if err != nil {
		return err
	}

	defer b.close()

	ballots, err := b.pendingBallots(contract)
	if err != nil {
		return fmt.Errorf("list pending ballots: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Pending ballots: %d\n", len(ballots))
	for i := range ballots {
		fmt.Fprintf(w, "  %s:", oracle.FormatID(ballots[i].ID))
		for j := range ballots[i].Voters {
			fmt.Fprintf(w, " %s", address.Uint160ToString(ballots[i].Voters[j]))
		}
		fmt.Fprintln(w)
	}

	return nil
}

func parseContract(s string) (util.Uint160, error) {
	h, err := address.StringToUint160(s)
	if err == nil {
		return h, nil
	}

	h, err = util.Uint160DecodeStringLE(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid contract '%s': neither address nor script hash", s)
	}

	return h, nil
}

func printState(w io.Writer, r *oracle.ContractReader) error {
	epoch, err := r.CurrentEpoch()
	if err != nil {
		return fmt.Errorf("get current epoch: %w", err)
	}

	price, err := r.CurrentPrice()
	if err != nil {
		return fmt.Errorf("get current price: %w", err)
	}

	balance, err := r.Balance()
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	lastUpdate, err := r.LastDataUpdate()
	if err != nil {
		return fmt.Errorf("get last data update: %w", err)
	}

	threshold, err := r.RequiredConfirmations()
	if err != nil {
		return fmt.Errorf("get required confirmations: %w", err)
	}

	owners, err := r.Owners()
	if err != nil {
		return fmt.Errorf("get owners: %w", err)
	}

	fmt.Fprintf(w, "Epoch: %s\n", epoch)
	fmt.Fprintf(w, "Price: %s\n", price)
	fmt.Fprintf(w, "Balance: %s\n", balance)
	fmt.Fprintf(w, "Last data update: %s\n", lastUpdate)
	fmt.Fprintf(w, "Owners (%s required):\n", threshold)
	for i := range owners {
		fmt.Fprintf(w, "  %s\n", address.Uint160ToString(owners[i]))
	}

	return nil
}

func printProposal(w io.Writer, r *oracle.ContractReader, kind int, epoch *big.Int, s string) error {
	value, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid proposal value '%s'", s)
	}

	id, err := oracle.UpdateProposalID(kind, epoch, value)
	if err != nil {
		return err
	}

	n, err := r.Confirmations(id)
	if err != nil {
		return fmt.Errorf("get confirmations of %s: %w", oracle.FormatID(id), err)
	}

	owners, err := r.Owners()
	if err != nil {
		return fmt.Errorf("get owners: %w", err)
	}

	fmt.Fprintf(w, "Proposal %s (value %s, epoch %s): %s confirmations\n",
		oracle.FormatID(id), value, epoch, n)

	for i := range owners {
		ok, err := r.HasConfirmed(id, owners[i])
		if err != nil {
			return fmt.Errorf("check confirmation of %s: %w", address.Uint160ToString(owners[i]), err)
		}

		if ok {
			fmt.Fprintf(w, "  confirmed by %s\n", address.Uint160ToString(owners[i]))
		}
	}

	return nil
}
