/*
Package merkletree implements the authenticated key-value tree: an ordered
set of string entries summarized by a single root field element.

# Root

Despite its name the tree is not a binary tree keyed by bit position.
The root is a sequential commitment over the entry set. Entries are visited
in ascending key order and folded into an accumulator seeded with zero:

	acc = HashPair(acc, HashPair(HashLeaf(key), HashLeaf(value)))

An empty tree has root zero, except for a freshly created tree whose root is
the top of the default-hash ladder (default[0] = 0,
default[i+1] = HashPair(default[i], default[i])). The root is a pure function
of the final entry set, independent of the order of the operations applied.

# Witness

MerklePath returns one element per other entry, each carrying the hashed
combination of that entry's key and value. It discloses the whole entry set
and grows linearly with it; it is not a logarithmic Merkle path.

# Storage

Entries are persisted to a kv.DB under EntryIdentifier||key, together with
the root under RootIdentifier, in a single batch per mutation. The tree
itself takes no locks: the caller serializes every access.
*/
package merkletree
