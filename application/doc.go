/*
Package application is a library for building the tree server and its
clients.

application implements the server- and client-side application-layer
components of the authenticated tree service: the request transport,
the message encoding, configuration and logging.

# Encoding

This module implements the message encoding and decoding for client-server
communications. Currently this module only supports JSON encoding.

# Config

Configurations are read and written by a ConfigLoader chosen by
encoding. TOML is the default; YAML is supported as well.

# Logger

This module implements a generic logging system that can be used by any
application/executable. It wraps a zap.SugaredLogger.

# ServerBase

This module provides the network layer of the tree server. It listens on
TLS-secured TCP and Unix socket addresses, enforces the request types
each address accepts, and serializes mutating requests against all
others.
*/
package application
