// Package seed loads the bundled ASQ-3 reference tables: age intervals,
// domains, cutoff scores, recommendation texts and the question bank.
//
// The bundled questions.csv only carries questionnaires for the 2, 12, 24,
// 36, 48 and 60 month intervals. Deployments screening at the other fifteen
// intervals must point REFERENCE_QUESTIONS_CSV at a complete question bank;
// starting a screening for an interval without questions fails with
// PRECONDITION_FAILED.
package seed

import (
	"bytes"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/asq3-api/internal/asq3"
	"github.com/noah-isme/asq3-api/internal/models"
)

//go:embed data/reference.yaml data/questions.csv
var bundled embed.FS

// namespace scopes the name-based ids so reseeding produces the same primary keys.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("asq3-api/reference"))

type referenceFile struct {
	MaxScore float64 `yaml:"max_score"`
	Domains  []struct {
		Code         models.DomainCode `yaml:"code"`
		Name         string            `yaml:"name"`
		Icon         string            `yaml:"icon"`
		Color        string            `yaml:"color"`
		DisplayOrder int               `yaml:"display_order"`
	} `yaml:"domains"`
	AgeIntervals []struct {
		Months  int    `yaml:"months"`
		Label   string `yaml:"label"`
		MinDays int    `yaml:"min_days"`
		MaxDays int    `yaml:"max_days"`
	} `yaml:"age_intervals"`
	Cutoffs               map[int][]float64 `yaml:"cutoffs"`
	RecommendationBuckets []struct {
		Range  string                         `yaml:"range"`
		Months []int                          `yaml:"months"`
		Texts  map[models.DomainCode][]string `yaml:"texts"`
	} `yaml:"recommendation_buckets"`
}

// domainLabels maps the Indonesian labels used in spreadsheet exports to codes.
var domainLabels = map[string]models.DomainCode{
	"komunikasi":        models.DomainCommunication,
	"motorik kasar":     models.DomainGrossMotor,
	"motorik halus":     models.DomainFineMotor,
	"pemecahan masalah": models.DomainProblemSolving,
	"personal sosial":   models.DomainPersonalSocial,
	"personal-sosial":   models.DomainPersonalSocial,
}

// ID derives the stable id of a reference row from its natural key.
func ID(kind string, parts ...interface{}) string {
	key := kind
	for _, p := range parts {
		key += ":" + fmt.Sprint(p)
	}
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

// Load reads the bundled tables. When questionsPath is non-empty the question
// bank is read from that CSV file instead of the bundled one.
func Load(questionsPath string) (asq3.ReferenceData, error) {
	reference, err := bundled.ReadFile("data/reference.yaml")
	if err != nil {
		return asq3.ReferenceData{}, fmt.Errorf("read bundled reference: %w", err)
	}

	var questions io.Reader
	if questionsPath != "" {
		f, err := os.Open(questionsPath)
		if err != nil {
			return asq3.ReferenceData{}, fmt.Errorf("open questions csv: %w", err)
		}
		defer f.Close()
		questions = f
	} else {
		raw, err := bundled.ReadFile("data/questions.csv")
		if err != nil {
			return asq3.ReferenceData{}, fmt.Errorf("read bundled questions: %w", err)
		}
		questions = bytes.NewReader(raw)
	}

	return Parse(reference, questions)
}

// Parse builds reference data from the YAML tables and a question CSV with
// columns age_months, domain, question_number, question_text, hint_text.
func Parse(referenceYAML []byte, questionsCSV io.Reader) (asq3.ReferenceData, error) {
	var file referenceFile
	if err := yaml.Unmarshal(referenceYAML, &file); err != nil {
		return asq3.ReferenceData{}, fmt.Errorf("decode reference yaml: %w", err)
	}
	maxScore := file.MaxScore
	if maxScore == 0 {
		maxScore = asq3.MaxDomainScore
	}

	var data asq3.ReferenceData
	intervalByMonths := make(map[int]string, len(file.AgeIntervals))
	domainByCode := make(map[models.DomainCode]string, len(file.Domains))

	for _, d := range file.Domains {
		if !d.Code.Valid() {
			return asq3.ReferenceData{}, fmt.Errorf("unknown domain code %q", d.Code)
		}
		domain := models.Domain{
			ID:           ID("domain", d.Code),
			Code:         d.Code,
			Name:         d.Name,
			DisplayOrder: d.DisplayOrder,
		}
		if d.Icon != "" {
			icon := d.Icon
			domain.Icon = &icon
		}
		if d.Color != "" {
			color := d.Color
			domain.Color = &color
		}
		domainByCode[d.Code] = domain.ID
		data.Domains = append(data.Domains, domain)
	}

	for _, i := range file.AgeIntervals {
		label := i.Label
		if label == "" {
			label = fmt.Sprintf("%d Bulan", i.Months)
		}
		interval := models.AgeInterval{
			ID:         ID("interval", i.Months),
			AgeMonths:  i.Months,
			AgeLabel:   label,
			MinAgeDays: i.MinDays,
			MaxAgeDays: i.MaxDays,
		}
		intervalByMonths[i.Months] = interval.ID
		data.Intervals = append(data.Intervals, interval)
	}

	for _, i := range file.AgeIntervals {
		row, ok := file.Cutoffs[i.Months]
		if !ok {
			continue
		}
		if len(row) != len(models.DomainCodes) {
			return asq3.ReferenceData{}, fmt.Errorf("cutoffs for %d months: want %d values, got %d", i.Months, len(models.DomainCodes), len(row))
		}
		for idx, code := range models.DomainCodes {
			domainID, ok := domainByCode[code]
			if !ok {
				return asq3.ReferenceData{}, fmt.Errorf("cutoffs reference undeclared domain %s", code)
			}
			data.Cutoffs = append(data.Cutoffs, models.CutoffScore{
				ID:              ID("cutoff", i.Months, code),
				AgeIntervalID:   intervalByMonths[i.Months],
				DomainID:        domainID,
				CutoffScore:     row[idx],
				MonitoringScore: asq3.MonitoringScore(row[idx], maxScore),
				MaxScore:        maxScore,
			})
		}
	}

	for _, bucket := range file.RecommendationBuckets {
		for _, months := range bucket.Months {
			intervalID, ok := intervalByMonths[months]
			if !ok {
				return asq3.ReferenceData{}, fmt.Errorf("recommendation bucket %s references unknown interval %d", bucket.Range, months)
			}
			for _, code := range models.DomainCodes {
				for idx, text := range bucket.Texts[code] {
					data.Recommendations = append(data.Recommendations, models.Recommendation{
						ID:                 ID("recommendation", months, code, idx+1),
						DomainID:           domainByCode[code],
						AgeIntervalID:      intervalID,
						Priority:           idx + 1,
						RecommendationText: text,
					})
				}
			}
		}
	}

	questions, err := parseQuestions(questionsCSV, intervalByMonths, domainByCode)
	if err != nil {
		return asq3.ReferenceData{}, err
	}
	data.Questions = questions

	return data, nil
}

func parseQuestions(r io.Reader, intervals map[int]string, domains map[models.DomainCode]string) ([]models.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read questions header: %w", err)
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("questions csv needs at least 4 columns, got %d", len(header))
	}

	var questions []models.Question
	seen := make(map[string]struct{})
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("questions csv line %d: %w", line, err)
		}
		if len(record) < 4 {
			continue
		}

		months, err := parseMonths(record[0])
		if err != nil {
			return nil, fmt.Errorf("questions csv line %d: %w", line, err)
		}
		intervalID, ok := intervals[months]
		if !ok {
			return nil, fmt.Errorf("questions csv line %d: unknown interval %d months", line, months)
		}
		code := parseDomain(record[1])
		domainID, ok := domains[code]
		if !ok {
			return nil, fmt.Errorf("questions csv line %d: unknown domain %q", line, record[1])
		}
		number, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil || number <= 0 {
			return nil, fmt.Errorf("questions csv line %d: invalid question number %q", line, record[2])
		}
		text := strings.TrimSpace(record[3])
		if text == "" {
			return nil, fmt.Errorf("questions csv line %d: empty question text", line)
		}

		id := ID("question", months, code, number)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("questions csv line %d: duplicate question %d/%s/%d", line, months, code, number)
		}
		seen[id] = struct{}{}

		q := models.Question{
			ID:             id,
			AgeIntervalID:  intervalID,
			DomainID:       domainID,
			QuestionNumber: number,
			QuestionText:   text,
			DisplayOrder:   number,
		}
		if len(record) > 4 {
			if hint := strings.TrimSpace(record[4]); hint != "" {
				q.HintText = &hint
			}
		}
		questions = append(questions, q)
	}

	return questions, nil
}

func parseMonths(raw string) (int, error) {
	value := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "Bulan"))
	months, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid age %q", raw)
	}
	return months, nil
}

func parseDomain(raw string) models.DomainCode {
	value := strings.ToLower(strings.TrimSpace(raw))
	if code := models.DomainCode(value); code.Valid() {
		return code
	}
	return domainLabels[value]
}

// MissingQuestions returns the age months of every interval that has no
// questions in data, in interval order.
func MissingQuestions(data asq3.ReferenceData) []int {
	covered := make(map[string]bool, len(data.Intervals))
	for _, q := range data.Questions {
		covered[q.AgeIntervalID] = true
	}
	var missing []int
	for _, interval := range data.Intervals {
		if !covered[interval.ID] {
			missing = append(missing, interval.AgeMonths)
		}
	}
	return missing
}
