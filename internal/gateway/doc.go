/*
Gateway accepts client connections and serializes their requests into the engine.

# Module
  - accept loop: one goroutine per connection, TCP or Unix socket
  - session: reads one frame, waits for the engine reply, writes the response, repeats
  - engine loop: the only goroutine that touches the engine, fed through bus.Queue

# Source
  - framed requests from clients
  - snapshot queries from the admin server

# Produce
  - framed order responses to clients
  - connection teardown, releasing every live order of the closed connection

# Sharded
  - none
*/
package gateway
