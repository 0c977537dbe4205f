// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline service owns the job lifecycle; the scheduler walks
// pages in chunks through the engine chain; the document builder and
// table builder turn per-page results into the merged document model
// consumed by the export serializers.
package services
