// Package report derives presentation data from a schedule: the per-slot
// workload of every resource, utilization statistics and the checks a
// schedule must pass against its problem.
package report
