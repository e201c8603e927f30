package sync

import (
	"context"

	"github.com/pkg/errors"
)

const recentSyncLimit = 10

// Health assembles the operational view of the sync subsystem. A down
// replica is a reportable state, not a failure; store errors propagate.
func (s *Service) Health(ctx context.Context) (HealthReport, error) {
	var report HealthReport

	last, err := s.coord.LastFullSync(ctx)
	if err != nil {
		s.log.WithError(err).Warn("reading last full sync failed")
	}
	report.LastFullSync = last

	report.ReplicaStatus = "up"
	if err := s.replica.Ping(ctx); err != nil {
		report.ReplicaStatus = "down"
		s.log.WithError(err).Warn("replica ping failed")
	}

	report.Workers, err = s.workers.GetCounts(ctx)
	if err != nil {
		return HealthReport{}, errors.Wrap(err, "counting workers")
	}

	report.Errors, err = s.ledger.GetStatusCounts(ctx)
	if err != nil {
		return HealthReport{}, errors.Wrap(err, "counting sync errors")
	}

	report.RecentSyncs, err = s.audit.Recent(ctx, "WORKER_SYNC", recentSyncLimit)
	if err != nil {
		s.log.WithError(err).Warn("reading recent sync audit entries failed")
		report.RecentSyncs = nil
	}

	return report, nil
}
