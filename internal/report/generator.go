// Package report renders accumulated validation issues into a
// structured, stable-ordered report. Determinism is a hard
// requirement: reports are diffed in review workflows, so repeated
// runs over unchanged input must be byte-identical.
package report

import (
	"sort"

	"github.com/custodia-labs/mdcorpus/internal/core/domain"
)

// Generate builds the final report from the corpus document count,
// per-document parse failures and the accumulated issue list. Issues
// are ordered by (document key, line, kind discriminant); failures by
// document key.
func Generate(
	totalDocuments int,
	failures []domain.ParseFailure,
	issues []domain.ValidationIssue,
) *domain.Report {
	sorted := make([]domain.ValidationIssue, len(issues))
	copy(sorted, issues)
	domain.SortIssues(sorted)

	lines := make([]domain.ReportLine, len(sorted))
	counts := make(map[domain.IssueKind]int)
	for i, issue := range sorted {
		lines[i] = domain.ReportLine{
			DocumentKey: issue.DocumentKey,
			Line:        issue.Line,
			Kind:        issue.Kind,
			Message:     issue.Message(),
		}
		counts[issue.Kind]++
	}

	kinds := make([]domain.IssueKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	issueCounts := make([]domain.IssueCount, len(kinds))
	for i, k := range kinds {
		issueCounts[i] = domain.IssueCount{Kind: k, Count: counts[k]}
	}

	sortedFailures := make([]domain.ParseFailure, len(failures))
	copy(sortedFailures, failures)
	sort.Slice(sortedFailures, func(i, j int) bool {
		return sortedFailures[i].DocumentKey < sortedFailures[j].DocumentKey
	})

	return &domain.Report{
		TotalDocuments: totalDocuments,
		Counts:         issueCounts,
		Issues:         lines,
		ParseFailures:  sortedFailures,
	}
}
