// Package retry provides backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay and maximum delay. [WithFixedDelay] is the
// flat-delay variant used by the remote command executor, which waits the
// same interval between every attempt.
package retry
