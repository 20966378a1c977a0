// package formatter exports category trees to JSON, CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/downbeats/internal/models"
	"github.com/desertthunder/downbeats/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists the accepted values for an export format flag.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ValidFormat reports whether format is one of [Formats].
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// MediaResolver turns a relative thumbnail path into an absolute URL.
type MediaResolver func(path *string) string

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slug creates a file-name friendly slug, e.g. "Boss Fights!" -> "boss-fights".
func Slug(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.Join(strings.Fields(result), "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// BaseName returns "<id>-<slug>" for a category, used for export file names.
func BaseName(c models.Category) string {
	if slug := Slug(c.Name); slug != "" {
		return fmt.Sprintf("%d-%s", c.ID, slug)
	}
	return strconv.FormatInt(c.ID, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportToJSON encodes the full tree.
func ExportToJSON(tree *models.CategoryTree) ([]byte, error) {
	return shared.MarshalJSON(tree, true)
}

// ExportToCSV flattens the tree into rows with columns: Type, ID, Path, Name, Description, URL, Thumbnail.
//
// Path is the " / " joined chain of ancestor names starting with the category.
func ExportToCSV(tree *models.CategoryTree) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Type", "ID", "Path", "Name", "Description", "URL", "Thumbnail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	c := tree.Category
	records := [][]string{
		{"category", strconv.FormatInt(c.ID, 10), "", c.Name, c.Description, "", deref(c.Thumbnail)},
	}
	records = append(records, soundtrackRecords(tree.Soundtracks, c.Name)...)

	tree.Walk(func(node *models.SubcategoryTree, depth int, path []string) {
		s := node.Subcategory
		records = append(records, []string{
			"subcategory", strconv.FormatInt(s.ID, 10), strings.Join(path, " / "), s.Name, s.Description, "", deref(s.Thumbnail),
		})
		full := strings.Join(append(append([]string{}, path...), s.Name), " / ")
		records = append(records, soundtrackRecords(node.Soundtracks, full)...)
	})

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func soundtrackRecords(tracks []models.Soundtrack, path string) [][]string {
	records := make([][]string, 0, len(tracks))
	for _, st := range tracks {
		records = append(records, []string{
			"soundtrack", strconv.FormatInt(st.ID, 10), path, st.Title, st.Description, st.URL, deref(st.Thumbnail),
		})
	}
	return records
}

// ExportToMarkdown renders the tree as a README with nested headings and soundtrack links.
// imageFilename is an optional cover image written next to the file.
func ExportToMarkdown(tree *models.CategoryTree, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	counts := tree.Counts()

	fmt.Fprintf(&buf, "# %s\n\n", tree.Category.Name)
	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}
	if tree.Category.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", tree.Category.Description)
	}
	fmt.Fprintf(&buf, "**Subcategories**: %d\n", counts.SubcategoriesCount)
	fmt.Fprintf(&buf, "**Soundtracks**: %d\n\n", counts.SoundtracksCount)

	writeMarkdownTracks(&buf, tree.Soundtracks)

	tree.Walk(func(node *models.SubcategoryTree, depth int, path []string) {
		level := min(depth+2, 6)
		fmt.Fprintf(&buf, "%s %s\n\n", strings.Repeat("#", level), node.Subcategory.Name)
		if node.Subcategory.Description != "" {
			fmt.Fprintf(&buf, "%s\n\n", node.Subcategory.Description)
		}
		writeMarkdownTracks(&buf, node.Soundtracks)
	})

	return buf.Bytes(), nil
}

func writeMarkdownTracks(buf *bytes.Buffer, tracks []models.Soundtrack) {
	if len(tracks) == 0 {
		return
	}
	for i, st := range tracks {
		fmt.Fprintf(buf, "%d. [%s](%s)", i+1, st.Title, st.URL)
		if st.Description != "" {
			fmt.Fprintf(buf, " - %s", st.Description)
		}
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}

// ExportToText renders the tree as an indented outline.
func ExportToText(tree *models.CategoryTree) ([]byte, error) {
	var buf bytes.Buffer
	counts := tree.Counts()

	fmt.Fprintf(&buf, "Category: %s\n", tree.Category.Name)
	if tree.Category.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", tree.Category.Description)
	}
	fmt.Fprintf(&buf, "Contents: %s\n\n", counts.Summary())

	for _, st := range tree.Soundtracks {
		fmt.Fprintf(&buf, "- %s <%s>\n", st.Title, st.URL)
	}

	tree.Walk(func(node *models.SubcategoryTree, depth int, path []string) {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&buf, "%s+ %s\n", indent, node.Subcategory.Name)
		for _, st := range node.Soundtracks {
			fmt.Fprintf(&buf, "%s  - %s <%s>\n", indent, st.Title, st.URL)
		}
	})

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of the category and its counts (without children)
func ToMetadataJSON(tree *models.CategoryTree) ([]byte, error) {
	meta := struct {
		models.Category
		models.DeleteImpact
	}{tree.Category, tree.Counts()}
	return shared.MarshalJSON(meta, true)
}

// WriteJSONExport writes the tree to path, defaulting to {BaseName}.json.
func WriteJSONExport(tree *models.CategoryTree, path string) (string, error) {
	if path == "" {
		path = BaseName(tree.Category) + ".json"
	}

	data, err := ExportToJSON(tree)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	RowsFile     string
	MetadataFile string
}

// WriteCSVExport exports a tree to CSV format with accompanying metadata JSON file.
//
// Defaults to [BaseName] as the base filename & creates {base}_tree.csv and {base}_metadata.json
func WriteCSVExport(tree *models.CategoryTree, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = BaseName(tree.Category)
	}

	csvData, err := ExportToCSV(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	rowsFile := baseFilepath + "_tree.csv"
	if err := os.WriteFile(rowsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		RowsFile:     rowsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a tree to Markdown format in a dedicated directory.
//
// Directory name defaults to [BaseName]. When resolve is set and the category has a thumbnail, the
// image is downloaded next to the README. A failed download only drops the cover.
func WriteMarkdownExport(tree *models.CategoryTree, outputDir string, resolve MediaResolver) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = BaseName(tree.Category)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if resolve != nil && tree.Category.Thumbnail != nil {
		imageURL := resolve(tree.Category.Thumbnail)
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			log.Warn("failed to download cover image", "url", imageURL, "error", err)
		} else {
			coverImageFilename = "cover" + filepath.Ext(*tree.Category.Thumbnail)
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				log.Warn("failed to save cover image", "path", coverImagePath, "error", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(tree, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport exports a tree to plain text format.
//
// Defaults to {BaseName}_tree.txt as the filename.
func WriteTextExport(tree *models.CategoryTree, path string) (string, error) {
	if path == "" {
		path = BaseName(tree.Category) + "_tree.txt"
	}

	textData, err := ExportToText(tree)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
