package deploy

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/oracle-contract/rpc/oracle"
)

// OracleParams groups deployment parameters of the Governed Oracle contract.
type OracleParams struct {
	// Accounts allowed to propose and confirm changes. Must be non-empty,
	// unique and at most oracle.MaxOwners long.
	Owners []util.Uint160

	// Number of distinct owners required to apply any change, in
	// [1, len(Owners)].
	Threshold int

	// Initial price of data reads in GAS fractions, non-negative.
	Price int64
}

// Validate checks the parameters the same way the contract does on
// deployment. Returned errors wrap [oracle.ErrConfig].
func (p OracleParams) Validate() error {
	if len(p.Owners) == 0 {
		return fmt.Errorf("%w: empty owner list", oracle.ErrConfig)
	}

	if len(p.Owners) > oracle.MaxOwners {
		return fmt.Errorf("%w: %d owners, at most %d allowed", oracle.ErrConfig, len(p.Owners), oracle.MaxOwners)
	}

	seen := make(map[util.Uint160]struct{}, len(p.Owners))
	for i := range p.Owners {
		if _, ok := seen[p.Owners[i]]; ok {
			return fmt.Errorf("%w: duplicate owner %s", oracle.ErrConfig, p.Owners[i].StringLE())
		}
		seen[p.Owners[i]] = struct{}{}
	}

	if p.Threshold < 1 || p.Threshold > len(p.Owners) {
		return fmt.Errorf("%w: required confirmations %d out of range [1, %d]",
			oracle.ErrConfig, p.Threshold, len(p.Owners))
	}

	if p.Price < 0 {
		return fmt.Errorf("%w: negative price %d", oracle.ErrConfig, p.Price)
	}

	return nil
}

// DeployData returns the data passed to the contract on deployment.
func (p OracleParams) DeployData() []any {
	owners := make([]any, len(p.Owners))
	for i := range p.Owners {
		owners[i] = p.Owners[i]
	}

	return []any{owners, p.Threshold, p.Price}
}
