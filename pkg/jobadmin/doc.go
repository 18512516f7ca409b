// Package jobadmin exposes operator controls for job types over HTTP.
//
// The router is a chi.Router meant to be mounted under an admin prefix. It
// reports queue depths, lists dead letters and lets an operator requeue or
// purge them, trigger a scheduled drain out of band and read the durable
// dead letter archive when one is configured.
//
//	GET    /                                    stats of every job type
//	GET    /{jobType}/stats                     stats of one job type
//	POST   /{jobType}/drain                     run the job type's drain now
//	GET    /{jobType}/dead-letters              in-memory dead letters
//	DELETE /{jobType}/dead-letters              purge dead letters
//	GET    /{jobType}/dead-letters/archived     archived dead letters (?limit=)
//	POST   /{jobType}/dead-letters/requeue      requeue all dead letters
//	POST   /{jobType}/dead-letters/{id}/requeue requeue one dead letter
//
// Every response uses the Response envelope. Errors carry a machine-readable
// code: unknown_job_type and execution_not_found map to 404, queue_full to
// 409 and malformed input to 400.
package jobadmin
