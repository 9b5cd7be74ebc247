package search

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func seedInterns() []models.Intern {
	base := day("2024-01-01")
	interns := make([]models.Intern, 0, 30)
	for i := 0; i < 25; i++ {
		interns = append(interns, models.Intern{
			ID:         fmt.Sprintf("eng-%02d", i),
			FirstName:  fmt.Sprintf("Eng%d", i),
			LastName:   "Doe",
			Email:      fmt.Sprintf("eng%d@aptiv.com", i),
			University: "INSA Lyon",
			Major:      "Computer Science",
			Department: "Engineering",
			Supervisor: "Karim Benali",
			Status:     models.InternStatusActive,
			StartDate:  base.AddDate(0, 0, i),
			EndDate:    base.AddDate(0, 3, i),
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}
	others := []models.Intern{
		{ID: "hr-1", FirstName: "Sara", LastName: "Idrissi", Email: "sara@aptiv.com", University: "ENSIAS", Major: "HR", Department: "Human Resources", Supervisor: "Nadia", Status: models.InternStatusActive, StartDate: day("2024-02-01"), EndDate: day("2024-06-30")},
		{ID: "eng-done", FirstName: "Omar", LastName: "Alami", Email: "omar@aptiv.com", University: "EMI", Major: "Mechanics", Department: "Engineering", Supervisor: "Karim Benali", Status: models.InternStatusCompleted, StartDate: day("2023-02-01"), EndDate: day("2023-06-30")},
		{ID: "fin-1", FirstName: "Lina", LastName: "Tazi", Email: "lina@aptiv.com", University: "ISCAE", Major: "Finance", Department: "Finance", Supervisor: "Youssef", Status: models.InternStatusTerminated, StartDate: day("2024-03-01"), EndDate: day("2024-05-01")},
		{ID: "ops-1", FirstName: "Adam", LastName: "Berrada", Email: "adam@aptiv.com", University: "ENSA", Major: "Logistics", Department: "Operations", Supervisor: "Hind", Status: models.InternStatusActive, StartDate: day("2024-04-01"), EndDate: day("2024-09-01")},
		{ID: "ops-2", FirstName: "Yasmine", LastName: "Fassi", Email: "yasmine@aptiv.com", University: "Al Akhawayn", Major: "Industrial", Department: "Operations", Supervisor: "Hind", Status: models.InternStatusActive, StartDate: day("2024-05-01"), EndDate: day("2024-10-01")},
	}
	return append(interns, others...)
}

func TestBuilderSkipsBlankInputs(t *testing.T) {
	spec := NewBuilder().
		Keyword("   ").
		Field(FieldDepartment, "").
		Field(FieldMajor, "\t").
		Status("").
		DateRange(FieldStartDate, nil, nil).
		Build()

	assert.True(t, spec.Empty())
	clause, args := spec.ToSQL("i", 1)
	assert.Equal(t, "TRUE", clause)
	assert.Empty(t, args)
}

func TestEmptySpecEqualsUnfilteredListing(t *testing.T) {
	interns := seedInterns()
	spec, err := FromCriteria(Criteria{Keyword: " ", Department: ""})
	require.NoError(t, err)

	p, err := NewPageable(0, 100, "", "")
	require.NoError(t, err)

	filtered, total := Apply(interns, spec, p)
	unfiltered, unfilteredTotal := Apply(interns, Spec{}, p)
	assert.Equal(t, unfilteredTotal, total)
	assert.Equal(t, len(interns), total)
	assert.Equal(t, unfiltered, filtered)
}

func TestKeywordMatchesAnySearchedField(t *testing.T) {
	interns := seedInterns()
	for _, kw := range []string{"KARIM", "ensias", "aptiv.com", "logist", "tazi", "eng1", "human"} {
		spec := NewBuilder().Keyword(kw).Build()
		matched := 0
		for i := range interns {
			in := &interns[i]
			if !spec.Matches(in) {
				continue
			}
			matched++
			hit := false
			for _, f := range KeywordFields {
				if strings.Contains(strings.ToLower(textValue(in, f)), strings.ToLower(kw)) {
					hit = true
				}
			}
			assert.True(t, hit, "intern %s matched %q without a field hit", in.ID, kw)
		}
		assert.NotZero(t, matched, kw)
	}
}

func TestDateRangeBoundsAreInclusive(t *testing.T) {
	interns := seedInterns()
	from := day("2024-01-05")
	to := day("2024-01-10")
	spec := NewBuilder().DateRange(FieldStartDate, &from, &to).Build()

	p, _ := NewPageable(0, 100, "startDate", "asc")
	page, total := Apply(interns, spec, p)
	require.Equal(t, 6, total)
	for _, in := range page {
		assert.False(t, in.StartDate.Before(from))
		assert.False(t, in.StartDate.After(to))
	}
	assert.Equal(t, from, page[0].StartDate)
	assert.Equal(t, to, page[len(page)-1].StartDate)
}

func TestOpenDateBound(t *testing.T) {
	interns := seedInterns()
	spec, err := FromCriteria(Criteria{EndDateFrom: ptr(day("2024-09-01"))})
	require.NoError(t, err)

	p, _ := NewPageable(0, 100, "", "")
	page, total := Apply(interns, spec, p)
	assert.Equal(t, 2, total)
	for _, in := range page {
		assert.False(t, in.EndDate.Before(day("2024-09-01")))
	}
}

func TestDepartmentAndStatusScenario(t *testing.T) {
	interns := seedInterns()
	spec, err := FromCriteria(Criteria{Department: "Engineering", Status: "active"})
	require.NoError(t, err)

	p, err := NewPageable(0, 20, "", "")
	require.NoError(t, err)

	page, total := Apply(interns, spec, p)
	assert.Equal(t, 25, total)
	assert.Len(t, page, 20)
	for _, in := range page {
		assert.Equal(t, "Engineering", in.Department)
		assert.Equal(t, models.InternStatusActive, in.Status)
	}

	next, _ := NewPageable(1, 20, "", "")
	rest, _ := Apply(interns, spec, next)
	assert.Len(t, rest, 5)
}

func TestFieldFiltersAreConjunctive(t *testing.T) {
	spec := NewBuilder().Field(FieldDepartment, "oper").Field(FieldUniversity, "ensa").Build()
	interns := seedInterns()

	p, _ := NewPageable(0, 10, "", "")
	page, total := Apply(interns, spec, p)
	require.Equal(t, 1, total)
	assert.Equal(t, "ops-1", page[0].ID)
}

func TestFromCriteriaRejectsUnknownStatus(t *testing.T) {
	_, err := FromCriteria(Criteria{Status: "PAUSED"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidQuery.Code))
}

func TestToSQLRendersPlaceholdersInOrder(t *testing.T) {
	from := day("2024-01-01")
	spec := NewBuilder().
		Keyword("Ali_").
		Field(FieldDepartment, "Eng").
		Status(models.InternStatusActive).
		DateRange(FieldEndDate, &from, nil).
		Build()

	clause, args := spec.ToSQL("i", 3)
	assert.Equal(t, "(LOWER(i.first_name) LIKE $3 OR LOWER(i.last_name) LIKE $3 OR LOWER(i.email) LIKE $3 OR "+
		"LOWER(i.university) LIKE $3 OR LOWER(i.major) LIKE $3 OR LOWER(i.department) LIKE $3 OR LOWER(i.supervisor) LIKE $3)"+
		" AND LOWER(i.department) LIKE $4 AND i.status = $5 AND i.end_date >= $6", clause)
	require.Len(t, args, 4)
	assert.Equal(t, `%ali\_%`, args[0])
	assert.Equal(t, "%eng%", args[1])
	assert.Equal(t, "ACTIVE", args[2])
	assert.Equal(t, from, args[3])
}

func TestToSQLWithoutAlias(t *testing.T) {
	clause, args := NewBuilder().Field(FieldMajor, "CS").Build().ToSQL("", 1)
	assert.Equal(t, "LOWER(major) LIKE $1", clause)
	assert.Equal(t, []interface{}{"%cs%"}, args)
}

func TestDateRangeTruncatesTime(t *testing.T) {
	from := time.Date(2024, 1, 5, 18, 30, 0, 0, time.UTC)
	spec := NewBuilder().DateRange(FieldStartDate, &from, nil).Build()
	in := &models.Intern{StartDate: day("2024-01-05")}
	assert.True(t, spec.Matches(in))
}
