// Package protocol holds the wire layer shared by the OAuth1 and OAuth2
// handshakes: the inbound request view, the provider response union,
// body decoding, the outbound HTTP transport, handshake results and the
// error values every layer matches on.
package protocol
