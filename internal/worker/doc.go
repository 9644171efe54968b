// Package worker serves the local transcription engine over HTTP so other
// machines can use it as their remote worker backend.
//
// Endpoints:
//
//	GET  /health      {"status":"healthy","service":...,"model":...}
//	POST /transcribe  multipart file, optional language and fast=true
//	                  -> {"text":...,"language":...}
//
// A missing file part is a 400; any transcription failure is a 500 with an
// {"error":...} body. When a token is configured every request must carry
// "Authorization: Bearer <token>".
package worker
