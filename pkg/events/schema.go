// Package events emits gym resolution lifecycle events
package events

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Event types published to the gym events topic
const (
	EventGymLinked      = "gym.linked"
	EventGymUnlinked    = "gym.unlinked"
	EventMatchCandidate = "match.candidate"
	EventMatchApproved  = "match.approved"
	EventMatchRejected  = "match.rejected"
)

// GymLinkedData is the payload for gym.linked
type GymLinkedData struct {
	SchemaVersion string   `json:"schema_version"`
	MasterGymID   string   `json:"master_gym_id"`
	MasterGymName string   `json:"master_gym_name"`
	SourceGymIDs  []string `json:"source_gym_ids"`
}

// GymUnlinkedData is the payload for gym.unlinked
type GymUnlinkedData struct {
	SchemaVersion string `json:"schema_version"`
	MasterGymID   string `json:"master_gym_id"`
	SourceGymID   string `json:"source_gym_id"`
}

// MatchCandidateData is the payload for match.candidate
type MatchCandidateData struct {
	SchemaVersion string `json:"schema_version"`
	MatchID       string `json:"match_id"`
	SourceGym1ID  string `json:"source_gym1_id"`
	SourceGym2ID  string `json:"source_gym2_id"`
	Confidence    int    `json:"confidence"`
}

// MatchResolvedData is the payload for match.approved and match.rejected
type MatchResolvedData struct {
	SchemaVersion string `json:"schema_version"`
	MatchID       string `json:"match_id"`
	SourceGym1ID  string `json:"source_gym1_id"`
	SourceGym2ID  string `json:"source_gym2_id"`
	ReviewedBy    string `json:"reviewed_by"`
	MasterGymID   string `json:"master_gym_id,omitempty"`
}
