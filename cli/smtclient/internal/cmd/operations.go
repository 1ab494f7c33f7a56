package cmd

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/emf99/zkSMT/application/client"
	"github.com/emf99/zkSMT/protocol"
	zkclient "github.com/emf99/zkSMT/protocol/client"
	"github.com/spf13/cobra"
)

// An operation is a client request usable both as a subcommand
// and from the REPL.
type operation struct {
	use     string
	short   string
	minArgs int
	maxArgs int
	run     func(conf *client.Config, args []string) (string, error)
}

var operations = []*operation{
	{"insert <key> <value>", "Insert or update an entry.", 2, 2, insert},
	{"delete <key>", "Delete an entry.", 1, 1, remove},
	{"root", "Print the hex of the little-endian root bytes.", 0, 0, root},
	{"path <key>", "Print the witness of a key.", 1, 1, witness},
	{"prove <key> <value> [nonce]", "Request a keyed-numeric proof envelope; an absent key is inserted.", 2, 3, prove},
	{"prove-user <username> [nonce]", "Request a username-keyed proof envelope.", 1, 2, proveUser},
	{"prove-local <username> [nonce]", "Build the username proof envelopes locally from the server's root, witness and entries.", 1, 2, proveLocal},
	{"verify <key> <root> <proof>", "Verify a username-keyed or keyed-numeric envelope.", 3, 3, verify},
	{"verify-signal <public-key> <expected-root> <proof>", "Verify a signal-based envelope.", 3, 3, verifySignal},
	{"verify-query <name> <id> <root> <proof>", "Verify a byte proof.", 4, 4, verifyQuery},
	{"data <key>", "Print the circuit inputs of a key.", 1, 1, data},
	{"entries", "Print every entry sorted by key.", 0, 0, entries},
	{"stats", "Print the tree statistics.", 0, 0, stats},
	{"greet <name>", "Ask the server for a greeting.", 1, 1, greet},
}

func (op *operation) name() string {
	return strings.Fields(op.use)[0]
}

func (op *operation) command() *cobra.Command {
	return &cobra.Command{
		Use:   op.use,
		Short: op.short,
		Args:  cobra.RangeArgs(op.minArgs, op.maxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := op.run(conf, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func init() {
	for _, op := range operations {
		RootCmd.AddCommand(op.command())
	}
}

func lookupOperation(name string) *operation {
	for _, op := range operations {
		if op.name() == name {
			return op
		}
	}
	return nil
}

func parseU64(what, s string) (uint64, error) {
	v, err := protocol.ParseU64(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an unsigned integer: %q", what, s)
	}
	return v, nil
}

// nonceArg parses the optional nonce at args[i]; it defaults to zero.
func nonceArg(args []string, i int) (uint64, error) {
	if len(args) <= i {
		return 0, nil
	}
	return parseU64("nonce", args[i])
}

// optionalNonce parses the nonce at args[i], or returns nil when it is
// not given.
func optionalNonce(args []string, i int) (*uint64, error) {
	if len(args) <= i {
		return nil, nil
	}
	n, err := parseU64("nonce", args[i])
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func insert(conf *client.Config, args []string) (string, error) {
	value, err := parseU64("value", args[1])
	if err != nil {
		return "", err
	}
	if err := conf.Insert(args[0], value); err != nil {
		return "", err
	}
	return fmt.Sprintf("Inserted %s = %d", args[0], value), nil
}

func remove(conf *client.Config, args []string) (string, error) {
	if err := conf.Delete(args[0]); err != nil {
		return "", err
	}
	return "Deleted " + args[0], nil
}

func root(conf *client.Config, args []string) (string, error) {
	return conf.Root()
}

func indent(v interface{}) (string, error) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func witness(conf *client.Config, args []string) (string, error) {
	elems, err := conf.MerklePath(args[0])
	if err != nil {
		return "", err
	}
	if elems == nil {
		elems = []protocol.MerkleProofEntry{}
	}
	return indent(elems)
}

func prove(conf *client.Config, args []string) (string, error) {
	key, err := parseU64("key", args[0])
	if err != nil {
		return "", err
	}
	value, err := parseU64("value", args[1])
	if err != nil {
		return "", err
	}
	nonce, err := nonceArg(args, 2)
	if err != nil {
		return "", err
	}
	return conf.GenerateProof(key, value, nonce)
}

func proveUser(conf *client.Config, args []string) (string, error) {
	nonce, err := nonceArg(args, 1)
	if err != nil {
		return "", err
	}
	wire, err := conf.GenerateUserProof(args[0], nonce)
	if err != nil {
		return "", err
	}
	// a failed generation is an error text, not an envelope
	if text, err := hex.DecodeString(wire); err == nil && strings.HasPrefix(string(text), "ERROR:") {
		return "", errors.New(string(text))
	}
	return wire, nil
}

func proveLocal(conf *client.Config, args []string) (string, error) {
	nonce, err := optionalNonce(args, 1)
	if err != nil {
		return "", err
	}
	view, err := conf.TreeView(args[0])
	if err != nil {
		return "", err
	}
	p, err := zkclient.BuildUserProof(args[0], nonce, view)
	if err != nil {
		return "", err
	}
	user, err := p.UserHex()
	if err != nil {
		return "", err
	}
	signal, err := p.SignalHex()
	if err != nil {
		return "", err
	}
	return indent(struct {
		Member      bool                   `json:"member"`
		Inputs      zkclient.CircuitInputs `json:"inputs"`
		UserProof   string                 `json:"user_proof"`
		SignalProof string                 `json:"signal_proof"`
	}{p.Member, p.Inputs, user, signal})
}

func validity(valid bool, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if valid {
		return "valid", nil
	}
	return "invalid", nil
}

func verify(conf *client.Config, args []string) (string, error) {
	return validity(conf.VerifyMembership(&protocol.VerifyMembershipRequest{
		Key: args[0], Root: args[1], ZKProof: args[2],
	}))
}

func verifySignal(conf *client.Config, args []string) (string, error) {
	return validity(conf.VerifySignalProof(&protocol.VerifySignalProofRequest{
		PublicKey: args[0], ExpectedRoot: args[1], ZKProofHex: args[2],
	}))
}

func verifyQuery(conf *client.Config, args []string) (string, error) {
	id, err := parseU64("id", args[1])
	if err != nil {
		return "", err
	}
	return validity(conf.VerifyQueryResult(&protocol.VerifyQueryRequest{
		Name: args[0], ID: id, Root: args[2], ZKProof: args[3],
	}))
}

func data(conf *client.Config, args []string) (string, error) {
	d, err := conf.ProofData(args[0])
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", fmt.Errorf("no entry for %q", args[0])
	}
	return *d, nil
}

func entries(conf *client.Config, args []string) (string, error) {
	pairs, err := conf.Entries()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s = %s", p[0], p[1])
	}
	return b.String(), nil
}

func stats(conf *client.Config, args []string) (string, error) {
	return conf.Stats()
}

func greet(conf *client.Config, args []string) (string, error) {
	return conf.Greet(args[0])
}
