package scoring

import (
	"github.com/jwalitptl/oppe-api/internal/config"
	"github.com/jwalitptl/oppe-api/internal/model"
)

// Mapping routes case types and review sub-score dimensions to competency
// categories. It is configuration data consumed by the aggregator, not
// branching logic inside it.
type Mapping struct {
	caseTypes  map[model.CaseType][]model.CompetencyCategory
	dimensions map[model.ReviewDimension][]model.CompetencyCategory
}

// DefaultMapping is the routing shipped out of the box. Every case type
// feeds PATIENT_CARE so the overall quality of outcomes is always visible
// in the primary care domain.
func DefaultMapping() *Mapping {
	return &Mapping{
		caseTypes: map[model.CaseType][]model.CompetencyCategory{
			model.CaseTypeSurgical:     {model.CategoryPatientCare, model.CategoryMedicalKnowledge},
			model.CaseTypeMedical:      {model.CategoryPatientCare, model.CategoryMedicalKnowledge},
			model.CaseTypeProcedural:   {model.CategoryPatientCare, model.CategoryPracticeBasedLearning},
			model.CaseTypeConsultation: {model.CategoryPatientCare, model.CategorySystemsBasedPractice},
			model.CaseTypeEmergency:    {model.CategoryPatientCare, model.CategoryMedicalKnowledge},
		},
		dimensions: map[model.ReviewDimension][]model.CompetencyCategory{
			model.DimensionTechnicalSkill:  {model.CategoryMedicalKnowledge, model.CategoryPatientCare},
			model.DimensionJudgment:        {model.CategoryMedicalKnowledge, model.CategoryPracticeBasedLearning},
			model.DimensionCommunication:   {model.CategoryInterpersonalSkills},
			model.DimensionProfessionalism: {model.CategoryProfessionalism},
		},
	}
}

// MappingFromConfig builds the routing table from configuration, falling
// back to the defaults when a section is absent.
func MappingFromConfig(cfg config.ScoringConfig) *Mapping {
	m := DefaultMapping()

	if len(cfg.CaseTypeMappings) > 0 {
		m.caseTypes = make(map[model.CaseType][]model.CompetencyCategory, len(cfg.CaseTypeMappings))
		for caseType, categories := range cfg.CaseTypeMappings {
			for _, cat := range categories {
				m.caseTypes[model.CaseType(caseType)] = append(
					m.caseTypes[model.CaseType(caseType)], model.CompetencyCategory(cat))
			}
		}
	}
	if len(cfg.DimensionMappings) > 0 {
		m.dimensions = make(map[model.ReviewDimension][]model.CompetencyCategory, len(cfg.DimensionMappings))
		for dim, categories := range cfg.DimensionMappings {
			for _, cat := range categories {
				m.dimensions[model.ReviewDimension(dim)] = append(
					m.dimensions[model.ReviewDimension(dim)], model.CompetencyCategory(cat))
			}
		}
	}
	return m
}

// CaseCounts reports whether a case of the given type feeds the category.
func (m *Mapping) CaseCounts(caseType model.CaseType, category model.CompetencyCategory) bool {
	for _, cat := range m.caseTypes[caseType] {
		if cat == category {
			return true
		}
	}
	return false
}

// DimensionsFor returns the review dimensions that feed the category.
func (m *Mapping) DimensionsFor(category model.CompetencyCategory) []model.ReviewDimension {
	var dims []model.ReviewDimension
	for dim, categories := range m.dimensions {
		for _, cat := range categories {
			if cat == category {
				dims = append(dims, dim)
				break
			}
		}
	}
	return dims
}

// HasReviewSignal reports whether any review dimension feeds the category.
// Categories without mapped dimensions score from case outcomes alone.
func (m *Mapping) HasReviewSignal(category model.CompetencyCategory) bool {
	return len(m.DimensionsFor(category)) > 0
}
