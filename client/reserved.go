package client

import "binrpc/variable"

// reservedMethodNames are the local methods every client must expose
// regardless of what the embedding application registers, matching
// the reference server's expectations of any IPC client it talks to.
var reservedMethodNames = []string{
	"ping",
	"broadcastEvent",
	"broadcastNewDevices",
	"broadcastDeleteDevices",
	"broadcastUpdateDevice",
}

func voidMethod(args []*variable.Variable) *variable.Variable { return variable.Void() }

// registerReservedMethods installs the default void-returning
// implementations. Register called later with the same name
// overrides these, so an embedding application that cares about, say,
// broadcastEvent can still supply its own handler.
func (c *Client) registerReservedMethods() {
	for _, name := range reservedMethodNames {
		c.methods[name] = voidMethod
	}
}
