// Defines methods/functions to encode/decode messages between client
// and server. Currently this module supports JSON marshal/unmarshal only.

package application

import (
	"encoding/json"

	"github.com/emf99/zkSMT/protocol"
)

// MarshalRequest returns a JSON encoding of the client's request.
// request may be nil for the request types without a payload.
func MarshalRequest(reqType int, request interface{}) ([]byte, error) {
	return json.Marshal(&protocol.Request{
		Type:    reqType,
		Request: request,
	})
}

// newRequest returns a pointer to the zero request payload of
// the request type t. The second return value is false if t is not
// a known request type.
func newRequest(t int) (interface{}, bool) {
	switch t {
	case protocol.InsertType:
		return new(protocol.InsertRequest), true
	case protocol.DeleteType:
		return new(protocol.DeleteRequest), true
	case protocol.GetMerkleProofType:
		return new(protocol.MerkleProofRequest), true
	case protocol.GenerateProofType:
		return new(protocol.GenerateProofRequest), true
	case protocol.GenerateUserProofType:
		return new(protocol.GenerateUserProofRequest), true
	case protocol.VerifyMembershipType:
		return new(protocol.VerifyMembershipRequest), true
	case protocol.VerifySignalProofType:
		return new(protocol.VerifySignalProofRequest), true
	case protocol.VerifyQueryResultType:
		return new(protocol.VerifyQueryRequest), true
	case protocol.GetProofDataType:
		return new(protocol.ProofDataRequest), true
	case protocol.GreetType:
		return new(protocol.GreetRequest), true
	case protocol.GetRootType, protocol.GetAllEntriesType, protocol.GetStatsType:
		return nil, true
	}
	return nil, false
}

// UnmarshalRequest parses a JSON-encoded request msg and
// creates the corresponding protocol.Request, which will be handled
// by the server. Unknown request types and payloads that do not
// match their type yield protocol.ErrMalformedMessage.
func UnmarshalRequest(msg []byte) (*protocol.Request, error) {
	var content json.RawMessage
	req := protocol.Request{
		Request: &content,
	}
	if err := json.Unmarshal(msg, &req); err != nil {
		return nil, err
	}
	request, ok := newRequest(req.Type)
	if !ok {
		return nil, protocol.ErrMalformedMessage
	}
	if request != nil {
		if len(content) == 0 || string(content) == "null" {
			return nil, protocol.ErrMalformedMessage
		}
		if err := json.Unmarshal(content, request); err != nil {
			return nil, err
		}
	}
	req.Request = request
	return &req, nil
}

// MarshalResponse returns a JSON encoding of the server's response.
func MarshalResponse(response *protocol.Response) ([]byte, error) {
	return json.Marshal(response)
}

// newPayload returns a pointer to the zero response payload of the
// request type t, or nil if responses to t carry none.
func newPayload(t int) protocol.DirectoryResponse {
	switch t {
	case protocol.GetRootType:
		return new(protocol.RootResponse)
	case protocol.GetMerkleProofType:
		return new(protocol.MerkleProofResponse)
	case protocol.GenerateProofType, protocol.GenerateUserProofType:
		return new(protocol.ProofResponse)
	case protocol.VerifyMembershipType, protocol.VerifySignalProofType,
		protocol.VerifyQueryResultType:
		return new(protocol.VerificationResponse)
	case protocol.GetProofDataType:
		return new(protocol.ProofDataResponse)
	case protocol.GetAllEntriesType:
		return new(protocol.EntriesResponse)
	case protocol.GetStatsType:
		return new(protocol.StatsResponse)
	case protocol.GreetType:
		return new(protocol.GreetResponse)
	}
	return nil
}

// UnmarshalResponse decodes the given message into a protocol.Response
// according to the given request type t. The request types are integer
// constants defined in the protocol package.
// A response which cannot be decoded, which carries an unknown error
// code, or which misses the payload of a successful request is
// reported as protocol.ErrMalformedMessage.
func UnmarshalResponse(t int, msg []byte) *protocol.Response {
	type Response struct {
		Error             protocol.ErrorCode
		DirectoryResponse json.RawMessage
	}
	malformed := protocol.NewErrorResponse(protocol.ErrMalformedMessage)

	var res Response
	if err := json.Unmarshal(msg, &res); err != nil {
		return malformed
	}
	response := &protocol.Response{Error: res.Error}
	if err := response.Validate(); err != nil {
		return malformed
	}

	payload := newPayload(t)
	if res.DirectoryResponse == nil || string(res.DirectoryResponse) == "null" {
		// error responses and the mutations carry no payload
		if res.Error == protocol.ReqSuccess && payload != nil {
			return malformed
		}
		return response
	}
	if payload == nil {
		return malformed
	}
	if err := json.Unmarshal(res.DirectoryResponse, payload); err != nil {
		return malformed
	}
	response.DirectoryResponse = payload
	return response
}

func malformedClientMsg(err error) *protocol.Response {
	// propagate an authorization failure as is
	if err == protocol.ErrUnauthorized {
		return protocol.NewErrorResponse(protocol.ErrUnauthorized)
	}
	return protocol.NewErrorResponse(protocol.ErrMalformedMessage)
}
