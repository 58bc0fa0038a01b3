package feedback

import (
	"fmt"
	"strings"

	"clubmatch/internal/domain/eventreviews"
)

// Field names one of the three free-text review fields.
type Field string

const (
	FieldContent               Field = "content"
	FieldComplaint             Field = "complaint"
	FieldImprovementSuggestion Field = "improvement_suggestion"
)

const maxContentLength = 500

// RatingRule says, for one rating bucket, which field the reviewer must
// fill, the review's initial status, and whether a conflict is opened
// alongside it. The table below is the single source of truth for the
// rating branching; nothing else in the pipeline inspects the rating.
type RatingRule struct {
	Required      Field
	MaxLength     int // 0 means uncapped
	InitialStatus eventreviews.Status
	OpensConflict bool
}

var (
	complaintRule = RatingRule{
		Required:      FieldComplaint,
		InitialStatus: eventreviews.StatusConflictOpen,
		OpensConflict: true,
	}
	suggestionRule = RatingRule{
		Required:      FieldImprovementSuggestion,
		InitialStatus: eventreviews.StatusPending,
	}
	testimonialRule = RatingRule{
		Required:      FieldContent,
		MaxLength:     maxContentLength,
		InitialStatus: eventreviews.StatusPending,
	}

	ratingRules = map[int]RatingRule{
		1: complaintRule,
		2: complaintRule,
		3: suggestionRule,
		4: testimonialRule,
		5: testimonialRule,
	}
)

// RuleFor returns the rule for a rating, or ErrInvalidRating.
func RuleFor(rating int) (RatingRule, error) {
	rule, ok := ratingRules[rating]
	if !ok {
		return RatingRule{}, ErrInvalidRating
	}
	return rule, nil
}

// ReviewInput is the reviewer's submission before validation.
type ReviewInput struct {
	Rating                int
	Content               string
	Complaint             string
	ImprovementSuggestion string
}

func (in ReviewInput) fieldValue(f Field) string {
	switch f {
	case FieldContent:
		return in.Content
	case FieldComplaint:
		return in.Complaint
	case FieldImprovementSuggestion:
		return in.ImprovementSuggestion
	}
	return ""
}

var allFields = []Field{FieldContent, FieldComplaint, FieldImprovementSuggestion}

// validateInput checks the submission against the rating rule table. It
// rejects a non-empty forbidden field rather than dropping it: callers
// should never send one, and silently accepting it would publish text the
// rating bucket never asked for.
func validateInput(in ReviewInput) (RatingRule, error) {
	rule, err := RuleFor(in.Rating)
	if err != nil {
		return RatingRule{}, err
	}

	for _, f := range allFields {
		value := strings.TrimSpace(in.fieldValue(f))
		if f == rule.Required {
			if value == "" {
				return RatingRule{}, fmt.Errorf("%w: %s", ErrMissingRequiredField, f)
			}
			if rule.MaxLength > 0 && len(value) > rule.MaxLength {
				return RatingRule{}, fmt.Errorf("%w: %s over %d characters", ErrContentTooLong, f, rule.MaxLength)
			}
			continue
		}
		if value != "" {
			return RatingRule{}, fmt.Errorf("%w: %s", ErrUnexpectedField, f)
		}
	}
	return rule, nil
}
