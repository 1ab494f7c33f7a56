/*
Package protocol defines the messages exchanged between clients and the
tree server, and the proof envelopes carried inside them.

# Message

This module defines the request types a client sends to the server and
the response payloads returned for each of them, together with the error
codes a server may reply with.

# Envelope

A proof envelope is a JSON document, transported as the lowercase hex of
its compact text. Three shapes exist: keyed-numeric (a numeric key and its
disclosed value), username-keyed (a username and a secret value) and
signal-based (a Groth16-shaped proof with public signals). None carries a
real proof: the pi_a, pi_b and pi_c components are decimal placeholders
built from the other fields.

DecodeEnvelope parses the JSON object once and then decodes the shapes
whose fields are all present, username-keyed first, then keyed-numeric,
then signal-based. The first shape that decodes strictly wins and fields
it does not name are ignored. Verification paths turn every decode
failure into a rejection.
*/
package protocol
