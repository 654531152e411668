// Package domain contains the core types of the ingestion and
// question-answering pipeline. It has no dependencies on adapters or
// external services.
package domain
