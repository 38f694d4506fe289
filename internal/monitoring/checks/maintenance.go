package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nandakumarbm26/Products-RestAPI/internal/monitoring"
)

// The product purge runs daily, so a success older than one cycle plus slack is stale.
const defaultMaintenanceMaxAge = 25 * time.Hour

// Maintenance reports the cache cleanup and product purge jobs. A job whose latest run failed
// marks the service down; one without a success inside maxAge marks it degraded. Jobs that have
// not run yet are ignored.
func Maintenance(maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultMaintenanceMaxAge
	}
	return monitoring.NewCheck("maintenance", func(context.Context) monitoring.ProbeResult {
		started := time.Now()
		status, problems := assessJobs(monitoring.Snapshot().Maintenance.Jobs, started, maxAge)
		return monitoring.ProbeResult{
			Status:   status,
			Details:  strings.Join(problems, "; "),
			Duration: time.Since(started),
		}
	})
}

func assessJobs(jobs []monitoring.MaintenanceJobSummary, now time.Time, maxAge time.Duration) (monitoring.ProbeStatus, []string) {
	status := monitoring.StatusUp
	var problems []string
	for _, job := range jobs {
		switch {
		case job.TotalRuns == 0:
		case job.ConsecutiveFailures > 0:
			status = monitoring.StatusDown
			problems = append(problems, fmt.Sprintf("%s: %d consecutive failures: %s",
				job.Job, job.ConsecutiveFailures, job.LastError))
		case now.Sub(job.LastSuccessAt) > maxAge:
			if status == monitoring.StatusUp {
				status = monitoring.StatusDegraded
			}
			problems = append(problems, fmt.Sprintf("%s: last success %s",
				job.Job, job.LastSuccessAt.UTC().Format(time.RFC3339)))
		}
	}
	return status, problems
}
