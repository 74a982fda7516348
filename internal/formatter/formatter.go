// package formatter provides functions to export ranking data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/duskriver/plrank/internal/report"
)

// ExportToCSV converts rankings to CSV format with columns: Descriptor, Rank, Playlist, Average
func ExportToCSV(rankings []report.Ranking) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Descriptor", "Rank", "Playlist", "Average"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, ranking := range rankings {
		for i, entry := range ranking.Entries {
			record := []string{
				ranking.Descriptor,
				strconv.Itoa(i + 1),
				entry.Name,
				strconv.FormatFloat(entry.Value, 'f', 2, 64),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts rankings to Markdown format, one section per descriptor
func ExportToMarkdown(rankings []report.Ranking, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Playlist Rankings"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, ranking := range rankings {
		buf.WriteString(fmt.Sprintf("## %s\n\n", ranking.Descriptor))
		for i, entry := range ranking.Entries {
			buf.WriteString(fmt.Sprintf("%d. %s (%.2f)\n", i+1, entry.Name, entry.Value))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts rankings to plain text format
func ExportToText(rankings []report.Ranking) ([]byte, error) {
	var buf bytes.Buffer

	for _, ranking := range rankings {
		buf.WriteString(fmt.Sprintf("%s:\n", ranking.Descriptor))
		for i, entry := range ranking.Entries {
			buf.WriteString(fmt.Sprintf("%d. %s - %.2f\n", i+1, entry.Name, entry.Value))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes rankings to {base}.csv.
//
// Defaults to "rankings" as the base filename.
func WriteCSVExport(rankings []report.Ranking, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = "rankings"
	}

	csvData, err := ExportToCSV(rankings)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	csvFile := baseFilepath + ".csv"
	if err := os.WriteFile(csvFile, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return csvFile, nil
}

// WriteMarkdownExport writes rankings to {base}.md.
//
// Defaults to "rankings" as the base filename.
func WriteMarkdownExport(rankings []report.Ranking, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = "rankings"
	}

	mdData, err := ExportToMarkdown(rankings, "")
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := baseFilepath + ".md"
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport writes rankings to {base}.txt.
//
// Defaults to "rankings" as the base filename.
func WriteTextExport(rankings []report.Ranking, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = "rankings"
	}

	textData, err := ExportToText(rankings)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	textFile := baseFilepath + ".txt"
	if err := os.WriteFile(textFile, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return textFile, nil
}
