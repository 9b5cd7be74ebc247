package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
)

// Kind tags a filter variant.
type Kind int

const (
	KindKeyword Kind = iota + 1
	KindField
	KindStatus
	KindDateRange
)

// Field names a filterable intern attribute.
type Field string

const (
	FieldFirstName  Field = "first_name"
	FieldLastName   Field = "last_name"
	FieldEmail      Field = "email"
	FieldUniversity Field = "university"
	FieldMajor      Field = "major"
	FieldDepartment Field = "department"
	FieldSupervisor Field = "supervisor"
	FieldStartDate  Field = "start_date"
	FieldEndDate    Field = "end_date"
)

// KeywordFields are OR-ed together by a keyword filter.
var KeywordFields = []Field{
	FieldFirstName, FieldLastName, FieldEmail, FieldUniversity, FieldMajor, FieldDepartment, FieldSupervisor,
}

// Filter is one tagged condition. Only the members relevant to Kind are set.
type Filter struct {
	Kind   Kind
	Field  Field
	Value  string
	Status models.InternStatus
	From   *time.Time
	To     *time.Time
}

// Spec is a conjunction of filters. The zero value matches everything.
type Spec struct {
	filters []Filter
}

// Filters returns a copy of the accumulated filters.
func (s Spec) Filters() []Filter {
	out := make([]Filter, len(s.filters))
	copy(out, s.filters)
	return out
}

// Empty reports whether the spec imposes no restriction.
func (s Spec) Empty() bool {
	return len(s.filters) == 0
}

// Builder accumulates filters, skipping blank inputs.
type Builder struct {
	filters []Filter
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Keyword adds a case-insensitive substring match across KeywordFields.
func (b *Builder) Keyword(value string) *Builder {
	if v := strings.TrimSpace(value); v != "" {
		b.filters = append(b.filters, Filter{Kind: KindKeyword, Value: v})
	}
	return b
}

// Field adds a case-insensitive substring match on one text field.
func (b *Builder) Field(field Field, value string) *Builder {
	if v := strings.TrimSpace(value); v != "" {
		b.filters = append(b.filters, Filter{Kind: KindField, Field: field, Value: v})
	}
	return b
}

// Status adds an exact status match.
func (b *Builder) Status(status models.InternStatus) *Builder {
	if status != "" {
		b.filters = append(b.filters, Filter{Kind: KindStatus, Status: status})
	}
	return b
}

// DateRange adds inclusive bounds on a date field. Nil bounds are open.
func (b *Builder) DateRange(field Field, from, to *time.Time) *Builder {
	if from == nil && to == nil {
		return b
	}
	f := Filter{Kind: KindDateRange, Field: field}
	if from != nil {
		d := dateOnly(*from)
		f.From = &d
	}
	if to != nil {
		d := dateOnly(*to)
		f.To = &d
	}
	b.filters = append(b.filters, f)
	return b
}

// Build freezes the accumulated filters.
func (b *Builder) Build() Spec {
	filters := make([]Filter, len(b.filters))
	copy(filters, b.filters)
	return Spec{filters: filters}
}

// ToSQL renders the spec as a PostgreSQL boolean expression using positional
// placeholders starting at $firstArg. An empty spec renders "TRUE".
func (s Spec) ToSQL(alias string, firstArg int) (string, []interface{}) {
	if s.Empty() {
		return "TRUE", nil
	}
	args := make([]interface{}, 0, len(s.filters)+2)
	conditions := make([]string, 0, len(s.filters)+2)
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", firstArg+len(args)-1)
	}

	for _, f := range s.filters {
		switch f.Kind {
		case KindKeyword:
			ph := next(likePattern(f.Value))
			ors := make([]string, len(KeywordFields))
			for i, field := range KeywordFields {
				ors[i] = fmt.Sprintf("LOWER(%s) LIKE %s", column(alias, field), ph)
			}
			conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
		case KindField:
			conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE %s", column(alias, f.Field), next(likePattern(f.Value))))
		case KindStatus:
			conditions = append(conditions, fmt.Sprintf("%s = %s", column(alias, "status"), next(string(f.Status))))
		case KindDateRange:
			if f.From != nil {
				conditions = append(conditions, fmt.Sprintf("%s >= %s", column(alias, f.Field), next(*f.From)))
			}
			if f.To != nil {
				conditions = append(conditions, fmt.Sprintf("%s <= %s", column(alias, f.Field), next(*f.To)))
			}
		}
	}
	return strings.Join(conditions, " AND "), args
}

// Matches evaluates the spec against one intern in memory.
func (s Spec) Matches(in *models.Intern) bool {
	if in == nil {
		return false
	}
	for _, f := range s.filters {
		switch f.Kind {
		case KindKeyword:
			hit := false
			for _, field := range KeywordFields {
				if containsFold(textValue(in, field), f.Value) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		case KindField:
			if !containsFold(textValue(in, f.Field), f.Value) {
				return false
			}
		case KindStatus:
			if in.Status != f.Status {
				return false
			}
		case KindDateRange:
			d := dateOnly(dateValue(in, f.Field))
			if f.From != nil && d.Before(*f.From) {
				return false
			}
			if f.To != nil && d.After(*f.To) {
				return false
			}
		}
	}
	return true
}

func column(alias string, field Field) string {
	if alias == "" {
		return string(field)
	}
	return alias + "." + string(field)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(value string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func textValue(in *models.Intern, field Field) string {
	switch field {
	case FieldFirstName:
		return in.FirstName
	case FieldLastName:
		return in.LastName
	case FieldEmail:
		return in.Email
	case FieldUniversity:
		return in.University
	case FieldMajor:
		return in.Major
	case FieldDepartment:
		return in.Department
	case FieldSupervisor:
		return in.Supervisor
	}
	return ""
}

func dateValue(in *models.Intern, field Field) time.Time {
	if field == FieldEndDate {
		return in.EndDate
	}
	return in.StartDate
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
