package rental

import (
	"time"

	"github.com/fleetrent/fleetrent-client/internal/pkg/validator"
)

// DateFormat is the wire format for filter dates.
const DateFormat = "2006-01-02"

// FilterSpec is the ephemeral set of criteria for one listing query.
// Empty optional fields mean "no constraint" and must be left out of the
// outgoing query entirely.
type FilterSpec struct {
	From      string // inclusive start of the date range, DateFormat
	To        string // inclusive end of the date range, DateFormat
	Status    Status // empty means any status
	PageIndex int    // 0-based
	PageSize  int
}

// FormValues are the raw filter form fields as entered by the user.
type FormValues struct {
	From   string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Status string `json:"status" validate:"omitempty,reservation_status"`
}

// SubmitFilter validates the form and produces the filter for it. The page
// index always resets to 0 so a narrower filter cannot keep an out-of-range
// page. Returns field errors keyed by form field when validation fails.
func SubmitFilter(v FormValues, pageSize int) (FilterSpec, map[string]string) {
	if errs := validator.Validate(&v); errs != nil {
		return FilterSpec{}, errs
	}

	if v.From != "" && v.To != "" {
		from, _ := time.Parse(DateFormat, v.From)
		to, _ := time.Parse(DateFormat, v.To)
		if to.Before(from) {
			return FilterSpec{}, map[string]string{"to": "End date must not be before start date"}
		}
	}

	return FilterSpec{
		From:      v.From,
		To:        v.To,
		Status:    Status(v.Status),
		PageIndex: 0,
		PageSize:  pageSize,
	}, nil
}

// ResetFilter is the "show all" filter produced by the form's reset.
func ResetFilter(pageSize int) FilterSpec {
	return FilterSpec{PageSize: pageSize}
}

// WithPage returns a copy of the filter pointing at another page. Filter
// criteria are untouched; paging never changes what is being searched.
func (f FilterSpec) WithPage(index int) FilterSpec {
	f.PageIndex = index
	return f
}
