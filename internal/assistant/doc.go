// Package assistant implements the chat loop behind the gateway's chat
// tab and the chat command.
//
// A turn sends the session history and the bridge's tool inventory to
// the model through the OpenAI-compatible chat completions endpoint.
// When the model responds with tool calls, the assistant executes them
// through the bridge registry, appends the results as tool messages and
// asks again, up to a bounded number of rounds. The final round offers
// no tools, which forces a prose answer.
//
// Sessions are in-memory, keyed by UUID, with bounded history.
package assistant
