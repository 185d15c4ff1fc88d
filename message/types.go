// MIT License
//
// Copyright (c) 2022-2026 FinMesh Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package message

// Type identifies the role a message plays in an exchange.
type Type int

const (
	// Request identifies a message that expects a matching Response.
	Request Type = iota
	// Response identifies the answer to a previously sent Request.
	Response
	// Ack identifies a positive one-way acknowledgement.
	Ack
	// Nack identifies a negative acknowledgement, typically carrying a
	// system-error payload.
	Nack
	// Heartbeat identifies a keep-alive probe message.
	Heartbeat

	numTypes
)

var typeNames = [numTypes]string{
	Request:   "REQUEST",
	Response:  "RESPONSE",
	Ack:       "ACK",
	Nack:      "NACK",
	Heartbeat: "HEARTBEAT",
}

// String returns the text representation of the message type.
func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// Protocol identifies the transport channel a message traveled on. It is
// informational: routing and logging use it, the core runtime does not
// interpret it.
type Protocol int

const (
	// TCP identifies the length-prefixed TCP channel.
	TCP Protocol = iota
	// UDP identifies the datagram channel.
	UDP
	// HTTP identifies the HTTP channel.
	HTTP
	// NATS identifies the NATS request/reply channel.
	NATS

	numProtocols
)

var protocolNames = [numProtocols]string{
	TCP:  "TCP",
	UDP:  "UDP",
	HTTP: "HTTP",
	NATS: "NATS",
}

// String returns the text representation of the protocol.
func (p Protocol) String() string {
	if p < 0 || p >= numProtocols {
		return "UNKNOWN"
	}
	return protocolNames[p]
}
