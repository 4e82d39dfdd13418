// Package async provides utilities for parallel task execution with
// error collection.
//
// [RunParallel] executes independent operations concurrently, optionally
// bounded by a concurrency limit, and returns every failure joined into a
// single error.
package async
