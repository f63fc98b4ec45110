// Package enrich annotates column profiles with retrieval metadata:
// natural-language synonyms, coded-value mappings, a short description and
// example questions a user might ask. Everything is derived from name and
// type heuristics, so the output for a given profile never varies between
// runs.
package enrich

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/tabulon-ai/tabulon-engine/pkg/models"
)

// Enricher fills the metadata fields of column profiles in place.
type Enricher struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Enricher {
	return &Enricher{logger: logger.Named("enrich")}
}

// keywordSynonyms maps name tokens to the phrasings a user is likely to
// ask with.
var keywordSynonyms = map[string][]string{
	"id":       {"identifier", "key"},
	"name":     {"title", "label"},
	"date":     {"day", "when"},
	"time":     {"timestamp", "when"},
	"price":    {"cost", "amount"},
	"revenue":  {"sales", "income"},
	"sales":    {"revenue"},
	"cost":     {"price", "expense"},
	"amount":   {"total", "value"},
	"qty":      {"quantity", "count"},
	"quantity": {"qty", "count"},
	"count":    {"number", "total"},
	"email":    {"e-mail", "mail address"},
	"phone":    {"telephone", "phone number"},
	"address":  {"location", "street"},
	"status":   {"state", "condition"},
	"city":     {"town", "municipality"},
	"country":  {"nation", "region"},
	"age":      {"years", "years old"},
	"gender":   {"sex"},
	"category": {"type", "group"},
	"url":      {"link", "web address"},
}

// valueDomains maps known coded enumerations to their expansions. A
// mapping applies only when every enum value of the column belongs to the
// domain.
var valueDomains = []map[string]string{
	{"m": "male", "f": "female"},
	{"y": "yes", "n": "no"},
	{"t": "true", "f": "false"},
	{"0": "no", "1": "yes"},
}

// Enrich populates Description, SynonymMappings, ValueMappings and
// ExampleQueries on p. tableName is the sanitized table the column
// belongs to.
func (e *Enricher) Enrich(ctx context.Context, p *models.ColumnProfile, tableName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.SynonymMappings = synonymsFor(p.Name)
	p.ValueMappings = valueMappingsFor(p)
	p.Description = describe(p)
	p.ExampleQueries = exampleQuestions(p, tableName)

	e.logger.Debug("Enriched column", zap.String("column", p.Name))
	return nil
}

func synonymsFor(name string) map[string][]string {
	out := make(map[string][]string)
	for _, token := range strings.Split(name, "_") {
		if token == "" {
			continue
		}
		var syns []string
		syns = append(syns, keywordSynonyms[token]...)
		if p := inflection.Plural(token); p != token {
			syns = append(syns, p)
		}
		if s := inflection.Singular(token); s != token {
			syns = append(syns, s)
		}
		if len(syns) > 0 {
			out[token] = dedupe(syns)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func valueMappingsFor(p *models.ColumnProfile) map[string]string {
	if !p.IsCategorical || len(p.EnumValues) == 0 {
		return nil
	}
	for _, domain := range valueDomains {
		if coveredBy(p.EnumValues, domain) {
			out := make(map[string]string, len(p.EnumValues))
			for _, v := range p.EnumValues {
				out[v] = domain[strings.ToLower(v)]
			}
			return out
		}
	}
	return nil
}

func coveredBy(values []string, domain map[string]string) bool {
	for _, v := range values {
		if _, ok := domain[strings.ToLower(v)]; !ok {
			return false
		}
	}
	return len(values) > 0
}

func describe(p *models.ColumnProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s column.", p.Name, p.SemanticType)
	if p.SpecialPattern != "" {
		fmt.Fprintf(&b, " Contains %s values.", p.SpecialPattern)
	}
	if p.IsCategorical && p.UniqueCount > 0 {
		fmt.Fprintf(&b, " Categorical with %d distinct values.", p.UniqueCount)
	}
	if p.Min != nil && p.Max != nil {
		fmt.Fprintf(&b, " Range %s to %s.", formatNumber(*p.Min), formatNumber(*p.Max))
	}
	if p.Nullable {
		fmt.Fprintf(&b, " %d missing values.", p.NullCount)
	}
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// exampleQuestions renders natural-language question templates by semantic
// type. These seed the downstream NL-query collaborator's prompt context.
func exampleQuestions(p *models.ColumnProfile, tableName string) []string {
	col := humanize(p.Name)
	tbl := humanize(tableName)
	switch {
	case p.SemanticType.IsNumeric():
		return []string{
			fmt.Sprintf("What is the average %s?", col),
			fmt.Sprintf("Which %s rows have the highest %s?", tbl, col),
		}
	case p.SemanticType == models.SemanticDate:
		return []string{
			fmt.Sprintf("How many %s rows were added per month by %s?", tbl, col),
			fmt.Sprintf("What is the most recent %s?", col),
		}
	case p.SemanticType == models.SemanticBoolean:
		return []string{
			fmt.Sprintf("How many %s rows have %s set?", tbl, col),
		}
	case p.IsCategorical:
		questions := []string{
			fmt.Sprintf("What are the most common values of %s?", col),
		}
		if len(p.TopValues) > 0 {
			questions = append(questions,
				fmt.Sprintf("How many rows have %s equal to %q?", col, p.TopValues[0].Value))
		}
		return questions
	default:
		return []string{
			fmt.Sprintf("Which rows mention a given phrase in %s?", col),
		}
	}
}

func humanize(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
