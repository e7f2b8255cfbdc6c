/*
Engine applies client requests to the in-memory risk state.

# Module
  - position book: per-instrument buy/sell exposure and net position, see risk.Book
  - order store: live orders and the connection that opened each, see order.Store
  - dispatcher: validates a decoded message, checks exposure against the limits, builds the response

# Source
  - decoded messages from the gateway, one at a time
  - connection open and close notices from the gateway

# Produce
  - order responses for NewOrder and ModifyOrderQuantity

# Sharded
  - none, a single goroutine owns the engine
*/
package engine
