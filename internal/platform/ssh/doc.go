// Package ssh runs commands and copies files on cluster nodes.
//
// Every attempt opens a fresh connection; nothing is pooled between
// operations. A failed attempt (dial error or non-zero exit) is retried
// with a fixed delay, and after the final attempt the caller receives a
// *RemoteExecutionError carrying the attempt count. Commands must be
// idempotent because a retry re-runs the whole command.
//
// Security: host keys are not verified. Nodes are ephemeral and their
// keys are unknown before first contact.
package ssh
