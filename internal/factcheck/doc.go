// Package factcheck holds the claim data contract and the Aggregator that keeps
// a bounded, newest-first history of verification results.
//
// Claims arrive from the verification API with free-form verdict and confidence
// strings. NewClaim and DecodeClaims normalize them into the Verdict and
// Confidence enums so ranking and rendering never deal with raw model output.
// TopDisputed groups false and partially true claims by exact text and ranks
// them by how often they recur.
//
// The typed errors here (ConfigurationError, TransportError, ParseError,
// ErrRateLimited) are shared by the verification client and the poll loop.
package factcheck
