package model

// CompetencyCategory is one of the six ACGME evaluation domains.
type CompetencyCategory string

const (
	CategoryPatientCare           CompetencyCategory = "PATIENT_CARE"
	CategoryMedicalKnowledge      CompetencyCategory = "MEDICAL_KNOWLEDGE"
	CategoryPracticeBasedLearning CompetencyCategory = "PRACTICE_BASED_LEARNING"
	CategoryInterpersonalSkills   CompetencyCategory = "INTERPERSONAL_SKILLS"
	CategoryProfessionalism       CompetencyCategory = "PROFESSIONALISM"
	CategorySystemsBasedPractice  CompetencyCategory = "SYSTEMS_BASED_PRACTICE"
)

// Competency definitions are loaded once at startup and treated as
// read-only configuration.
type Competency struct {
	Base
	Name         string             `db:"name" json:"name"`
	Description  string             `db:"description" json:"description,omitempty"`
	Category     CompetencyCategory `db:"category" json:"category"`
	MinimumScore float64            `db:"minimum_score" json:"minimum_score"`
}

// SeedCompetencies is the standard ACGME evaluation set with department
// minimum scores. Seeded idempotently at startup; departments adjust
// minimums in place afterwards.
func SeedCompetencies() []*Competency {
	return []*Competency{
		{Name: "Patient Care", Category: CategoryPatientCare, MinimumScore: 75,
			Description: "Compassionate, appropriate, and effective care for health problems"},
		{Name: "Medical Knowledge", Category: CategoryMedicalKnowledge, MinimumScore: 75,
			Description: "Established and evolving biomedical and clinical knowledge"},
		{Name: "Practice-Based Learning", Category: CategoryPracticeBasedLearning, MinimumScore: 70,
			Description: "Investigation and evaluation of one's own patient care"},
		{Name: "Interpersonal Skills", Category: CategoryInterpersonalSkills, MinimumScore: 75,
			Description: "Effective information exchange with patients, families, and colleagues"},
		{Name: "Professionalism", Category: CategoryProfessionalism, MinimumScore: 80,
			Description: "Commitment to professional responsibilities and ethical principles"},
		{Name: "Systems-Based Practice", Category: CategorySystemsBasedPractice, MinimumScore: 70,
			Description: "Awareness of and responsiveness to the larger system of health care"},
	}
}
