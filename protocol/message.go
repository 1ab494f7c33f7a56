// Defines the message format of the requests a client sends to the
// tree server, the corresponding responses, and constructors for them.

package protocol

// The types of requests a client sends to the tree server.
const (
	InsertType = iota
	DeleteType
	GetRootType
	GetMerkleProofType
	GenerateProofType
	GenerateUserProofType
	VerifyMembershipType
	VerifySignalProofType
	VerifyQueryResultType
	GetProofDataType
	GetAllEntriesType
	GetStatsType
	GreetType
)

var typeNames = map[int]string{
	InsertType:            "insert",
	DeleteType:            "delete",
	GetRootType:           "get_root",
	GetMerkleProofType:    "get_merkle_proof",
	GenerateProofType:     "generate_zk_proof",
	GenerateUserProofType: "generate_zk_proof_for_user",
	VerifyMembershipType:  "verify_zk_membership",
	VerifySignalProofType: "verify_real_zk_membership",
	VerifyQueryResultType: "verify_query_result",
	GetProofDataType:      "get_smt_data_for_zk_proof",
	GetAllEntriesType:     "get_all_smt_entries",
	GetStatsType:          "get_smt_stats",
	GreetType:             "greet",
}

// TypeName returns the operation name of a request type,
// or "unknown".
func TypeName(t int) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MutatingTypes contains the request types which may change the tree.
// Generating a keyed-numeric proof inserts an absent key. Generating a
// username-keyed proof only reads the tree.
var MutatingTypes = map[int]bool{
	InsertType:        true,
	DeleteType:        true,
	GenerateProofType: true,
}

// A Request message defines the data a client must send to the server
// for a particular request. Requests of GetRootType, GetAllEntriesType
// and GetStatsType carry no payload.
type Request struct {
	Type    int
	Request interface{}
}

// An InsertRequest upserts Key with the decimal form of Value.
type InsertRequest struct {
	Key   string `json:"key"`
	Value uint64 `json:"value"`
}

// A DeleteRequest removes Key; deleting an absent key succeeds.
type DeleteRequest struct {
	Key string `json:"key"`
}

// A MerkleProofRequest asks for the witness of Key.
type MerkleProofRequest struct {
	Key string `json:"key"`
}

// A GenerateProofRequest asks for a keyed-numeric envelope. The server
// inserts Key with Value first if Key is absent.
type GenerateProofRequest struct {
	Key   uint64 `json:"key"`
	Value uint64 `json:"value"`
	Nonce uint64 `json:"nonce"`
}

// A GenerateUserProofRequest asks for a username-keyed envelope.
type GenerateUserProofRequest struct {
	Username string `json:"username"`
	Nonce    uint64 `json:"nonce"`
}

// A VerifyMembershipRequest carries a hex envelope of either the
// username-keyed or the keyed-numeric shape.
type VerifyMembershipRequest struct {
	Key     string `json:"key"`
	Root    string `json:"root"`
	ZKProof string `json:"zk_proof"`
}

// A VerifySignalProofRequest carries a hex signal-based envelope and
// the public signals it is expected to commit to.
type VerifySignalProofRequest struct {
	PublicKey    string `json:"public_key"`
	ExpectedRoot string `json:"expected_root"`
	ZKProofHex   string `json:"zk_proof_hex"`
}

// A VerifyQueryRequest carries a byte proof: the concatenation of
// 32-byte little-endian field elements, hex-encoded, and the hex root
// it should fold into.
type VerifyQueryRequest struct {
	Name    string `json:"name"`
	ID      uint64 `json:"id"`
	Root    string `json:"root"`
	ZKProof string `json:"zk_proof"`
}

// A ProofDataRequest asks for the circuit inputs of PublicKey.
type ProofDataRequest struct {
	PublicKey string `json:"public_key"`
}

// A GreetRequest asks for a greeting for Name.
type GreetRequest struct {
	Name string `json:"name"`
}

// A Response message indicates the result of a client request
// with an appropriate error code, and carries the payload of
// the operation if it has one.
type Response struct {
	Error             ErrorCode
	DirectoryResponse `json:",omitempty"`
}

// A DirectoryResponse is the payload of a Response.
type DirectoryResponse interface{}

// RootResponse carries the hex of the little-endian root bytes.
type RootResponse struct {
	Root string `json:"root"`
}

// MerkleProofEntry is one hex-encoded witness element.
type MerkleProofEntry struct {
	Hash   string `json:"hash"`
	IsLeft bool   `json:"is_left"`
}

// MerkleProofResponse carries the witness of a key; it is empty
// when the key is absent.
type MerkleProofResponse struct {
	Path []MerkleProofEntry `json:"path"`
}

// ProofResponse carries a hex-encoded envelope, or the hex of an
// "ERROR: ..." text for a failed username-keyed generation.
type ProofResponse struct {
	Proof string `json:"proof"`
}

// VerificationResponse carries the outcome of a verification.
type VerificationResponse struct {
	Valid bool `json:"valid"`
}

// ProofDataResponse carries the circuit inputs as JSON text,
// or nil if the key is absent.
type ProofDataResponse struct {
	Data *string `json:"data"`
}

// EntriesResponse carries every (key, value) pair sorted by key.
type EntriesResponse struct {
	Entries [][2]string `json:"entries"`
}

// StatsResponse carries the human-readable statistics text.
type StatsResponse struct {
	Stats string `json:"stats"`
}

// GreetResponse carries a greeting.
type GreetResponse struct {
	Message string `json:"message"`
}

// NewErrorResponse creates a new response message indicating the error
// that occurred while the server was processing a client request.
func NewErrorResponse(e ErrorCode) *Response {
	return &Response{Error: e}
}

// Validate returns ErrMalformedMessage if the error code of res
// is neither ReqSuccess nor one of Errors.
func (res *Response) Validate() error {
	if res.Error == ReqSuccess || Errors[res.Error] {
		return nil
	}
	return ErrMalformedMessage
}

// NewSuccessResponse wraps a payload, which may be nil, into a
// successful Response.
func NewSuccessResponse(payload DirectoryResponse) *Response {
	return &Response{
		Error:             ReqSuccess,
		DirectoryResponse: payload,
	}
}

var _ DirectoryResponse = (*RootResponse)(nil)
var _ DirectoryResponse = (*MerkleProofResponse)(nil)
var _ DirectoryResponse = (*ProofResponse)(nil)
var _ DirectoryResponse = (*VerificationResponse)(nil)
var _ DirectoryResponse = (*ProofDataResponse)(nil)
var _ DirectoryResponse = (*EntriesResponse)(nil)
var _ DirectoryResponse = (*StatsResponse)(nil)
var _ DirectoryResponse = (*GreetResponse)(nil)
