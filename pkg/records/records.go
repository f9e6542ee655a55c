package records

import "context"

// Profile is one person in the dataset.
type Profile struct {
	ID      string   `json:"id" yaml:"id" bson:"id"`
	Name    string   `json:"name" yaml:"name" bson:"name"`
	Company string   `json:"company,omitempty" yaml:"company,omitempty" bson:"company,omitempty"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty" bson:"title,omitempty"`
	Email   string   `json:"email,omitempty" yaml:"email,omitempty" bson:"email,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty" bson:"tags,omitempty"`
}

// Relation is one scored relationship between two profiles.
//
// ConfidenceScore is deliberately untyped: sources deliver fractions (0.85),
// percentages (85), numeric strings ("0.85") or nothing at all.
type Relation struct {
	SourceProfileID       string `json:"source_profile_id" yaml:"source_profile_id" bson:"source_profile_id"`
	TargetProfileID       string `json:"target_profile_id" yaml:"target_profile_id" bson:"target_profile_id"`
	RelationshipType      string `json:"relationship_type" yaml:"relationship_type" bson:"relationship_type"`
	RelationshipStrength  string `json:"relationship_strength,omitempty" yaml:"relationship_strength,omitempty" bson:"relationship_strength,omitempty"`
	ConfidenceScore       any    `json:"confidence_score,omitempty" yaml:"confidence_score,omitempty" bson:"confidence_score,omitempty"`
	RelationshipDirection string `json:"relationship_direction,omitempty" yaml:"relationship_direction,omitempty" bson:"relationship_direction,omitempty"`
	Status                string `json:"status,omitempty" yaml:"status,omitempty" bson:"status,omitempty"`
	Evidence              string `json:"evidence,omitempty" yaml:"evidence,omitempty" bson:"evidence,omitempty"`
}

// Dataset is the complete relational input for one graph build.
type Dataset struct {
	Profiles      []Profile  `json:"profiles" yaml:"profiles"`
	Relationships []Relation `json:"relationships" yaml:"relationships"`
}

// Profile returns the profile with the given id.
func (d Dataset) Profile(id string) (Profile, bool) {
	for _, p := range d.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// Source loads a Dataset.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
}
