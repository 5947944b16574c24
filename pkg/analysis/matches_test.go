package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatches_FixedCategories(t *testing.T) {
	got := BuildMatches(FactRecord{}, FactRecord{})

	require.Len(t, got, 4)
	assert.Equal(t, "Образование", got[0].Item)
	assert.Equal(t, "Опыт", got[1].Item)
	assert.Equal(t, "Hard skills", got[2].Item)
	assert.Equal(t, "Soft skills", got[3].Item)

	// Нет требований — ни одна категория не может быть пробелом.
	for _, m := range got {
		assert.Equal(t, StatusPartial, m.Status, m.Item)
		assert.Equal(t, "не указано", m.Comment, m.Item)
	}
}

func TestBuildMatches_Education(t *testing.T) {
	job := FactRecord{Education: "высшее техническое"}

	gap := BuildMatches(job, FactRecord{})[0]
	assert.Equal(t, StatusGap, gap.Status)
	assert.Equal(t, "высшее техническое", gap.Comment)

	match := BuildMatches(job, FactRecord{Education: "высшее"})[0]
	assert.Equal(t, StatusMatch, match.Status)
}

func TestBuildMatches_Experience(t *testing.T) {
	job := FactRecord{ExperienceYears: 5}

	assert.Equal(t, StatusGap, BuildMatches(job, FactRecord{})[1].Status)
	assert.Equal(t, StatusPartial, BuildMatches(job, FactRecord{ExperienceYears: 2})[1].Status)

	match := BuildMatches(job, FactRecord{ExperienceYears: 5})[1]
	assert.Equal(t, StatusMatch, match.Status)
	assert.Equal(t, "5.0 лет (требуется 5.0)", match.Comment)
}

func TestBuildMatches_HardSkills(t *testing.T) {
	job := FactRecord{HardSkills: []string{"Go", "postgresql"}}

	gap := BuildMatches(job, FactRecord{})[2]
	assert.Equal(t, StatusGap, gap.Status)
	assert.Equal(t, "go, postgresql", gap.Comment)

	partial := BuildMatches(job, FactRecord{HardSkills: []string{"go"}})[2]
	assert.Equal(t, StatusPartial, partial.Status)

	match := BuildMatches(job, FactRecord{HardSkills: []string{"GO", "PostgreSQL", "docker"}})[2]
	assert.Equal(t, StatusMatch, match.Status)
}

func TestBuildMatches_ConsistentWithScoring(t *testing.T) {
	// Если скоринг нашёл пробел по hard skills, статус категории не может
	// быть match. Проверяем на наборе разных комбинаций.
	jobs := []FactRecord{
		{HardSkills: []string{"go", "sql"}},
		{HardSkills: []string{"go"}},
		{Education: "высшее", ExperienceYears: 3, HardSkills: []string{"python", "sql", "airflow"}},
	}
	resumes := []FactRecord{
		{},
		{HardSkills: []string{"go"}},
		{HardSkills: []string{"python", "sql", "airflow"}},
	}
	for _, job := range jobs {
		for _, resume := range resumes {
			scored := Score(job, resume, DefaultWeights)
			hardGap := false
			for _, m := range scored.Report.MissingRequired {
				if strings.HasPrefix(m, "Навык: ") {
					hardGap = true
				}
			}
			status := BuildMatches(job, resume)[2].Status
			if hardGap {
				assert.NotEqual(t, StatusMatch, status)
			}
		}
	}
}
