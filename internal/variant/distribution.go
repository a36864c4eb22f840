package variant

import "papergen/internal/model"

// typeTargets returns the target number of mcq, short, and long questions
// for one paper of the given exam type.
func typeTargets(examType model.ExamType, questionCount int) (mcq, short, long int) {
	switch examType {
	case model.ExamText:
		return 4, 2, 2
	case model.ExamPDF:
		return 10, 8, 6
	default:
		mcq = questionCount * 40 / 100
		short = questionCount * 40 / 100
		long = questionCount - mcq - short
		return mcq, short, long
	}
}

// enforceDistribution orders the candidate selection by type (mcq, then
// short, then long), taking at most the target count of each. If the result
// is still short of questionCount, remaining candidates are appended in
// their original order until the target is met or candidates run out; the
// result is truncated to exactly questionCount.
func enforceDistribution(candidates []model.Question, examType model.ExamType, questionCount int) []model.Question {
	targetMCQ, targetShort, targetLong := typeTargets(examType, questionCount)

	var mcqs, shorts, longs []model.Question
	for _, q := range candidates {
		switch q.Type {
		case model.TypeMCQ:
			mcqs = append(mcqs, q)
		case model.TypeLong:
			longs = append(longs, q)
		default:
			shorts = append(shorts, q)
		}
	}

	result := make([]model.Question, 0, questionCount)
	result = append(result, take(mcqs, targetMCQ)...)
	result = append(result, take(shorts, targetShort)...)
	result = append(result, take(longs, targetLong)...)

	// Pad from leftover candidates of any type.
	if len(result) < questionCount {
		chosen := make(map[string]bool, len(result))
		for _, q := range result {
			chosen[Normalize(q.Question)] = true
		}
		for _, q := range candidates {
			if len(result) >= questionCount {
				break
			}
			if !chosen[Normalize(q.Question)] {
				result = append(result, q)
				chosen[Normalize(q.Question)] = true
			}
		}
	}

	if len(result) > questionCount {
		result = result[:questionCount]
	}
	return result
}

func take(qs []model.Question, n int) []model.Question {
	if n > len(qs) {
		n = len(qs)
	}
	if n < 0 {
		n = 0
	}
	return qs[:n]
}
