package oracleconst

// Kinds of governed actions. They are the first element of every ballot ID
// tuple, so ballots of different kinds never collide.
const (
	// KindData marks proposals updating the stored value.
	KindData = 1
	// KindPrice marks proposals updating the read price.
	KindPrice = 2
	// KindWithdraw marks withdrawal requests.
	KindWithdraw = 3
)

// MaxOwners is the maximum number of oracle owners.
const MaxOwners = 250

const (
	// ErrConfig is a prefix of every deployment parameter error.
	ErrConfig = "invalid oracle configuration"
	// ErrEmptyOwners is returned on deployment without owners.
	ErrEmptyOwners = ErrConfig + ": empty owner list"
	// ErrTooManyOwners is returned on deployment with more than MaxOwners owners.
	ErrTooManyOwners = ErrConfig + ": too many owners"
	// ErrInvalidOwner is returned on deployment with a malformed owner account.
	ErrInvalidOwner = ErrConfig + ": invalid owner account"
	// ErrDuplicateOwner is returned on deployment with repeated owners.
	ErrDuplicateOwner = ErrConfig + ": duplicate owner"
	// ErrThreshold is returned if the number of required confirmations is
	// not in [1, number of owners].
	ErrThreshold = ErrConfig + ": required confirmations out of range"
	// ErrInitialPrice is returned on deployment with a negative price.
	ErrInitialPrice = ErrConfig + ": negative price"

	// ErrUnauthorized is returned if no owner has witnessed a governed call.
	ErrUnauthorized = "caller is not an oracle owner"
	// ErrStaleEpoch is returned if a proposal is made for an epoch other
	// than the current one.
	ErrStaleEpoch = "stale epoch"
	// ErrInvalidPrice is returned on price proposals with a negative value.
	ErrInvalidPrice = "negative price"
	// ErrPaymentMismatch is returned if a read payment differs from the price.
	ErrPaymentMismatch = "payment does not match data price"
	// ErrPaymentFailed is returned if a read payment can't be collected.
	ErrPaymentFailed = "failed to collect payment"
	// ErrInvalidRecipient is returned on withdrawals to a malformed account.
	ErrInvalidRecipient = "invalid recipient"
	// ErrInvalidAmount is returned on withdrawals of a non-positive amount.
	ErrInvalidAmount = "non positive amount"
	// ErrInsufficientFunds is logged when a confirmed withdrawal exceeds
	// the collected balance.
	ErrInsufficientFunds = "insufficient funds"
	// ErrTransferFailed is returned if GAS contract refuses to transfer a
	// confirmed withdrawal. A recipient contract rejecting the payment aborts
	// the transaction instead.
	ErrTransferFailed = "failed to transfer funds, aborting"
	// ErrDirectDeposit is logged when GAS is transferred outside of paid reads.
	ErrDirectDeposit = "oracle accepts GAS for data reads only"
)

// Names of the contract notifications.
const (
	ConfirmationEvent   = "Confirmation"
	DataUpdatedEvent    = "DataUpdated"
	PriceUpdatedEvent   = "PriceUpdated"
	DataReadEvent       = "DataRead"
	WithdrawEvent       = "Withdraw"
	WithdrawFailedEvent = "WithdrawFailed"
)
