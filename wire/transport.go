package wire

// ClientID is a server-assigned stable identifier for one connection,
// used only to direct a complete reply to the requester (spec §3,
// "Connection"). The empty ClientID means "broadcast" in
// ServerTransport.Send below.
type ClientID string

// ServerTransport is what a Yuzu server sends through, whether that's
// the built-in WebSocket upgrade handler or a host-supplied external
// transport (spec §4.6). Broadcast sends pass an empty ClientID;
// targeted sends (the complete reply) pass the requester's ClientID.
type ServerTransport interface {
	// Send delivers buf to the given client, or to every connected
	// client if id is empty.
	Send(id ClientID, buf []byte) error
}

// ServerTransportFunc adapts a function to ServerTransport, mirroring
// the external mode's onMessage(msg, clientId?) callback contract
// (spec §4.6/§6) almost verbatim.
type ServerTransportFunc func(id ClientID, buf []byte) error

func (f ServerTransportFunc) Send(id ClientID, buf []byte) error { return f(id, buf) }

// ClientTransport is what a Yuzu client sends through.
type ClientTransport interface {
	Send(buf []byte) error
}

// ClientTransportFunc adapts a function to ClientTransport, mirroring
// the external mode's onMessage(msg) callback (spec §4.6).
type ClientTransportFunc func(buf []byte) error

func (f ClientTransportFunc) Send(buf []byte) error { return f(buf) }
