/*
Package oracle implements Governed Oracle contract.

Oracle contract keeps a single integer value and the price of reading it.
Both of them can be changed only by a quorum of owners fixed at deployment:
any owner proposes a new value for the current epoch and the change is applied
once the required number of distinct owners confirm the same proposal. Every
applied change increments the epoch and drops all pending proposals, so
confirmations made for an outdated state are never counted.

Reading the value costs the current price in GAS. Collected GAS stays on the
contract account and can be withdrawn to any account with the same quorum of
owner confirmations.

# Contract notifications

Confirmation notification. This notification is produced when an owner
confirms a proposal or a withdrawal request for the first time. The ID is the
same one accepted by hasConfirmed and confirmations methods.

	Confirmation:
	  - name: owner
	    type: Hash160
	  - name: id
	    type: ByteArray

DataUpdated notification. This notification is produced when the stored value
is changed. It contains the new value and the new epoch.

	DataUpdated:
	  - name: value
	    type: Integer
	  - name: epoch
	    type: Integer

PriceUpdated notification. This notification is produced when the price is
changed. It contains the new price and the new epoch.

	PriceUpdated:
	  - name: value
	    type: Integer
	  - name: epoch
	    type: Integer

DataRead notification. This notification is produced on every successful read.

	DataRead:
	  - name: from
	    type: Hash160
	  - name: amount
	    type: Integer

Withdraw notification. This notification is produced when a confirmed amount
of GAS is transferred from the contract.

	Withdraw:
	  - name: recipient
	    type: Hash160
	  - name: amount
	    type: Integer

WithdrawFailed notification. This notification is produced when a withdrawal
request collects enough confirmations but the contract balance can't cover it.
The request is dropped.

	WithdrawFailed:
	  - name: recipient
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package oracle

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'owners' -> std.Serialize([]interop.Hash160)
    owner accounts, immutable after deployment
  - 'threshold' -> int
    number of owner confirmations required by any governed action
  - 'epoch' -> int
    incremented on every data or price change
  - 'data' -> int
    stored value
  - 'price' -> int
    payment required to read the value
  - 'balance' -> int
    GAS collected by reads and not withdrawn yet
  - 'lastUpdate' -> int
    timestamp of the block the value was last changed in
  - 'pendingRead' -> int
    read payment being transferred, exists only inside readData call
  - 'u' + ID -> std.Serialize(common.Ballot)
    pending data and price proposals, ID is sha256(serialize([kind, epoch, value]))
  - 'w' + ID -> std.Serialize(common.Ballot)
    pending withdrawal requests, ID is sha256(serialize([3, recipient, amount]))
*/
