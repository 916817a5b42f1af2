package pairs

import (
	"github.com/hashicorp/go-multierror"
	"github.com/scylladb/go-set/strset"

	"github.com/lanterndata/extupdate/extupdate/compat"
	"github.com/lanterndata/extupdate/extupdate/version"
	"github.com/lanterndata/extupdate/internal/log"
)

// Plan is the validated view of the discovered upgrade paths.
type Plan struct {
	// From holds the distinct upgrade sources, most recent first.
	From []version.Version
	// Target is the greatest upgrade target across all pairs.
	Target version.Version
	// Untagged is the single upgrade target without a tag (the unreleased version), if any.
	Untagged *version.Version
}

// Schedule is the ordered list of trials to attempt.
type Schedule struct {
	Trials []Pair
	// Skipped lists the upgrade sources excluded by the compatibility matrix.
	Skipped []version.Version
	// Untagged is the unreleased upgrade target, tested from the current checkout, if any.
	Untagged *version.Version
}

// NewPlan validates the pairs against the repository tags (with or without a leading "v"). Every upgrade
// source must be tagged, and at most one upgrade target may be untagged. Tags that are not versions are ignored.
func NewPlan(pairs []Pair, tags []string) (*Plan, error) {
	tagged := strset.New()
	for _, tag := range tags {
		v, err := version.ParseTag(tag)
		if err != nil {
			log.Debugf("ignoring tag %q: %v", tag, err)
			continue
		}
		tagged.Add(v.String())
	}

	var from, to []version.Version
	seenFrom, seenTo := strset.New(), strset.New()
	for _, p := range pairs {
		if !seenFrom.Has(p.From.String()) {
			seenFrom.Add(p.From.String())
			from = append(from, p.From)
		}
		if !seenTo.Has(p.To.String()) {
			seenTo.Add(p.To.String())
			to = append(to, p.To)
		}
	}
	version.Sort(from)
	version.Sort(to)

	var errs error

	var untaggedFrom []version.Version
	for _, v := range from {
		if !tagged.Has(v.String()) {
			untaggedFrom = append(untaggedFrom, v)
		}
	}
	if len(untaggedFrom) > 0 {
		errs = multierror.Append(errs, &InconsistencyError{Kind: UntaggedSource, Versions: untaggedFrom})
	}

	var untaggedTo []version.Version
	for _, v := range to {
		if tagged.Has(v.String()) {
			continue
		}
		untaggedTo = append(untaggedTo, v)
		if len(untaggedTo) == 1 {
			log.Warnf("upgrade target %s has no corresponding tag, assuming it is the unreleased version", v)
		}
	}
	if len(untaggedTo) > 1 {
		errs = multierror.Append(errs, &InconsistencyError{Kind: MultipleUntaggedTargets, Versions: untaggedTo})
	}

	if errs != nil {
		return nil, errs
	}

	plan := &Plan{
		From: version.Reverse(from),
	}
	if target, ok := version.Max(to); ok {
		plan.Target = target
	}
	if len(untaggedTo) == 1 {
		plan.Untagged = &untaggedTo[0]
	}
	return plan, nil
}

// Empty reports whether there is nothing to upgrade from.
func (p Plan) Empty() bool {
	return len(p.From) == 0
}

// Schedule orders one trial per upgrade source (most recent first), each targeting the overall latest
// version. Sources incompatible with the given platform version are skipped.
func (p Plan) Schedule(matrix *compat.Matrix, platformVersion string) Schedule {
	s := Schedule{
		Untagged: p.Untagged,
	}
	for _, from := range p.From {
		if matrix.IsIncompatible(platformVersion, from) {
			log.Infof("skipping %s: not supported on platform version %s", from, platformVersion)
			s.Skipped = append(s.Skipped, from)
			continue
		}
		s.Trials = append(s.Trials, Pair{From: from, To: p.Target})
	}
	return s
}
