package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Score считает оценку соответствия резюме вакансии. Чистая функция:
// никаких обращений к LLM, одинаковый вход — одинаковый выход.
func Score(job, resume FactRecord, weights WeightConfig) ScoreResult {
	report := ScoreReport{
		MissingRequired: []string{},
		PartialMatch:    []string{},
		Strengths:       []string{},
		ScoreDetails:    map[string]float64{},
	}
	var total float64

	// Образование: полный балл, если указано с обеих сторон. Если вакансия
	// требований не содержит — категория молчит (нет требования, нет пробела).
	var eduScore float64
	if job.Education != "" && resume.Education != "" {
		eduScore = weights.Education
	}
	report.ScoreDetails["education"] = eduScore
	if eduScore > 0 {
		report.Strengths = append(report.Strengths, "Есть соответствие по образованию")
	} else if job.Education != "" {
		report.MissingRequired = append(report.MissingRequired, "Образование не указано в резюме")
	}
	total += eduScore

	// Опыт: пропорциональный балл, требование есть только при job > 0.
	jobExp := job.ExperienceYears
	resumeExp := resume.ExperienceYears
	var expScore float64
	if jobExp > 0 {
		switch {
		case resumeExp >= jobExp:
			expScore = weights.Experience
			report.Strengths = append(report.Strengths,
				fmt.Sprintf("Опыт: %.1f лет (требуется %.1f)", resumeExp, jobExp))
		case resumeExp > 0:
			expScore = (resumeExp / jobExp) * weights.Experience
			report.PartialMatch = append(report.PartialMatch,
				fmt.Sprintf("Опыт: %.1f лет (требуется %.1f)", resumeExp, jobExp))
		default:
			report.MissingRequired = append(report.MissingRequired,
				fmt.Sprintf("Опыт %.1f лет", jobExp))
		}
	}
	report.ScoreDetails["experience"] = round2(expScore)
	total += expScore

	// Hard skills: балл за каждый требуемый навык, найденный в резюме.
	jobSkills := toSet(job.HardSkills)
	resumeSkills := toSet(resume.HardSkills)
	if len(jobSkills) > 0 {
		matched := intersect(jobSkills, resumeSkills)
		missing := subtract(jobSkills, resumeSkills)
		pointsPer := weights.HardSkills / float64(len(jobSkills))
		hsScore := float64(len(matched)) * pointsPer
		report.ScoreDetails["hard_skills"] = round2(hsScore)
		total += hsScore
		for _, s := range matched {
			report.Strengths = append(report.Strengths, "Навык: "+s)
		}
		for _, s := range missing {
			report.MissingRequired = append(report.MissingRequired, "Навык: "+s)
		}
	} else {
		report.ScoreDetails["hard_skills"] = 0
	}

	// Soft skills: совпадения идут в сильные стороны, но их отсутствие
	// пробелом не считается.
	jobSoft := toSet(job.SoftSkills)
	resumeSoft := toSet(resume.SoftSkills)
	matchedSoft := intersect(jobSoft, resumeSoft)
	var ssScore float64
	if len(jobSoft) > 0 {
		ssScore = float64(len(matchedSoft)) * (weights.SoftSkills / float64(len(jobSoft)))
	}
	report.ScoreDetails["soft_skills"] = round2(ssScore)
	total += ssScore
	for _, s := range matchedSoft {
		report.Strengths = append(report.Strengths, "Soft skill: "+s)
	}

	final := int(math.Round(total))
	if final > 100 {
		final = 100
	}
	return ScoreResult{Score: final, Report: report}
}

// ScoreToTen переводит 0-100 в шкалу 1-10. Ноль и меньше всегда дают 1.
// Округление — half-up (math.Round для неотрицательных значений).
func ScoreToTen(score100 int) int {
	if score100 <= 0 {
		return 1
	}
	n := int(math.Round(float64(score100) / 10))
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// toSet нормализует навыки (нижний регистр, обрезка пробелов) в множество.
func toSet(skills []string) map[string]struct{} {
	out := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out[s] = struct{}{}
	}
	return out
}

// sortedKeys возвращает элементы множества по алфавиту.
func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// intersect возвращает отсортированное пересечение множеств.
func intersect(a, b map[string]struct{}) []string {
	var out []string
	for s := range a {
		if _, ok := b[s]; ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// subtract возвращает отсортированную разность a \ b.
func subtract(a, b map[string]struct{}) []string {
	var out []string
	for s := range a {
		if _, ok := b[s]; !ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
