package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
)

// NoTargetLabel is shown for targets without a record and for records that are gone
const NoTargetLabel = "-"

// TargetResolver checks and labels task targets against the person pools
type TargetResolver struct {
	beneficiaries repository.PartyPool
	referents     repository.PartyPool
	sponsors      repository.PartyPool
}

// NewTargetResolver creates a new TargetResolver
func NewTargetResolver(beneficiaries, referents, sponsors repository.PartyPool) *TargetResolver {
	return &TargetResolver{
		beneficiaries: beneficiaries,
		referents:     referents,
		sponsors:      sponsors,
	}
}

func (r *TargetResolver) pool(target models.Target) (repository.PartyPool, uint64) {
	switch t := target.(type) {
	case models.BeneficiaryTarget:
		return r.beneficiaries, t.ID
	case models.ReferentTarget:
		return r.referents, t.ID
	case models.SponsorTarget:
		return r.sponsors, t.ID
	}
	return nil, 0
}

// Exists reports whether the record behind target is present. Targets
// that do not point at a record always exist.
func (r *TargetResolver) Exists(ctx context.Context, target models.Target) (bool, error) {
	pool, id := r.pool(target)
	if pool == nil {
		return true, nil
	}
	if id == 0 {
		return false, nil
	}
	ok, err := pool.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check %s target: %w", target.Type(), err)
	}
	return ok, nil
}

// Label returns the display label of a single target
func (r *TargetResolver) Label(ctx context.Context, target models.Target) (string, error) {
	labels, err := r.Labels(ctx, []models.Target{target})
	if err != nil {
		return "", err
	}
	return labels[0], nil
}

// Labels returns one label per target, in input order. Each pool is queried
// at most once whatever the number of targets.
func (r *TargetResolver) Labels(ctx context.Context, targets []models.Target) ([]string, error) {
	labels := make([]string, len(targets))
	wanted := map[repository.PartyPool][]uint64{}
	seen := map[repository.PartyPool]map[uint64]struct{}{}

	for i, target := range targets {
		labels[i] = NoTargetLabel
		pool, id := r.pool(target)
		if pool == nil || id == 0 {
			continue
		}
		if seen[pool] == nil {
			seen[pool] = map[uint64]struct{}{}
		}
		if _, dup := seen[pool][id]; dup {
			continue
		}
		seen[pool][id] = struct{}{}
		wanted[pool] = append(wanted[pool], id)
	}

	found := make(map[repository.PartyPool]map[uint64]string, len(wanted))
	for pool, ids := range wanted {
		m, err := pool.Labels(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target labels: %w", err)
		}
		found[pool] = m
	}

	for i, target := range targets {
		pool, id := r.pool(target)
		if pool == nil {
			continue
		}
		// A record with blank names reads as "-" rather than an empty cell
		if label, ok := found[pool][id]; ok && label != "" {
			labels[i] = label
		}
	}
	return labels, nil
}

// TaskLabels labels the target of each task, keyed by task id
func (r *TargetResolver) TaskLabels(ctx context.Context, tasks []models.Task) (map[uint64]string, error) {
	targets := make([]models.Target, len(tasks))
	for i, task := range tasks {
		targets[i] = task.Target()
	}
	labels, err := r.Labels(ctx, targets)
	if err != nil {
		return nil, err
	}
	byTask := make(map[uint64]string, len(tasks))
	for i, task := range tasks {
		byTask[task.ID] = labels[i]
	}
	return byTask, nil
}
