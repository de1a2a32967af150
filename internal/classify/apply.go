package classify

import "jobradar-engine/internal/domain"

// Annotate computes the persisted flags for a normalized candidate, in place.
// WorkMode is only inferred when the source did not set it.
func Annotate(j *domain.Job) {
	j.IsBarcelona = IsBarcelonaRole(j.Location, j.Title, j.Description)
	j.IsDataRole = IsDataRole(j.Title, j.Description)
	j.IsGreatFit = IsGreatFit(j.Title, j.Description)
	j.MentionsVisa, j.MentionsRelocation = DetectVisaMentions(j.Description)
	if j.WorkMode == "" {
		j.WorkMode = InferWorkMode(j.Location, j.Title, j.Description)
	}
}

// Matches is the keep-filter every adapter applies before emitting a job.
func Matches(j domain.Job) bool {
	return j.IsBarcelona && j.IsDataRole
}
