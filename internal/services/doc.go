// Package services defines shared utilities consumed by the acquisition
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp video IDs, backend names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every failure carries
//     one classification (recoverable vs fatal) callers can match with
//     errors.Is.
//
// Subpackages hold the clients for the remote worker, the cloud speech API,
// the local WhisperX engine, and the note generator.
package services
