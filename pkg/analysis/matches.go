package analysis

import (
	"fmt"
	"strings"
)

const notSpecified = "не указано"

// BuildMatches строит четыре статуса категорий для отображения.
// Логика намеренно дублирует скоринг независимо: скоринг даёт машинный
// отчёт в баллах, здесь — упрощённый статус для интерфейса. На граничных
// случаях они обязаны сходиться: нет требования — partial, полное
// совпадение — match, частичное — partial, ноль при наличии требования — gap.
func BuildMatches(job, resume FactRecord) []MatchItem {
	matches := make([]MatchItem, 0, 4)

	eduStatus := StatusGap
	if job.Education != "" && resume.Education != "" {
		eduStatus = StatusMatch
	}
	if job.Education == "" {
		eduStatus = StatusPartial
	}
	eduComment := job.Education
	if eduComment == "" {
		eduComment = notSpecified
	}
	matches = append(matches, MatchItem{Item: "Образование", Status: eduStatus, Comment: eduComment})

	jobExp := job.ExperienceYears
	resumeExp := resume.ExperienceYears
	var expStatus MatchStatus
	switch {
	case jobExp <= 0:
		expStatus = StatusPartial
	case resumeExp >= jobExp:
		expStatus = StatusMatch
	case resumeExp > 0:
		expStatus = StatusPartial
	default:
		expStatus = StatusGap
	}
	expComment := notSpecified
	if jobExp > 0 {
		expComment = fmt.Sprintf("%.1f лет (требуется %.1f)", resumeExp, jobExp)
	}
	matches = append(matches, MatchItem{Item: "Опыт", Status: expStatus, Comment: expComment})

	matches = append(matches, skillMatch("Hard skills", job.HardSkills, resume.HardSkills))
	matches = append(matches, skillMatch("Soft skills", job.SoftSkills, resume.SoftSkills))
	return matches
}

func skillMatch(item string, jobSkills, resumeSkills []string) MatchItem {
	required := toSet(jobSkills)
	have := toSet(resumeSkills)
	if len(required) == 0 {
		return MatchItem{Item: item, Status: StatusPartial, Comment: notSpecified}
	}
	matched := intersect(required, have)
	missing := subtract(required, have)
	status := StatusGap
	switch {
	case len(missing) == 0 && len(matched) > 0:
		status = StatusMatch
	case len(matched) > 0:
		status = StatusPartial
	}
	return MatchItem{Item: item, Status: status, Comment: strings.Join(sortedKeys(required), ", ")}
}
