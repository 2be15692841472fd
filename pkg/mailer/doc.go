// Package mailer is the bulk dispatcher of the outbound email pipeline.
//
// A Dispatcher walks a recipient list strictly sequentially: quota
// check, personalized message build, signed send. Sequential processing
// plus a Pacer (fixed delay by default, token bucket available) keeps
// the batch inside the email API's throughput limits and makes result
// ordering trivially match input ordering.
//
// Failure policy follows the pipeline's error taxonomy:
//
//   - quota blocked, render failure, transport failure: recorded in
//     that recipient's Result, batch continues;
//   - quota store unreachable or context cancelled: the batch aborts,
//     returning the results produced so far together with the error.
//
// The dispatcher returns the complete result slice even when every
// send failed; interpreting aggregate failure is the caller's job, via
// Summarize.
//
// Cross-invocation ordering is out of scope: the caller must ensure a
// single active dispatch run per identity if exactly-once daily
// delivery matters.
package mailer
