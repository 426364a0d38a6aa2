package analysis

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// azureEnvelope accepts both the REST polling envelope and a bare result.
type azureEnvelope struct {
	Status        string       `json:"status"`
	AnalyzeResult *azureResult `json:"analyzeResult"`
	azureResult
}

type azureResult struct {
	Content       string          `json:"content"`
	Pages         []azurePage     `json:"pages"`
	Tables        []azureTable    `json:"tables"`
	KeyValuePairs []azureKeyValue `json:"keyValuePairs"`
	Documents     []azureDocument `json:"documents"`
}

type azurePage struct {
	PageNumber int          `json:"pageNumber"`
	Lines      []azureLine  `json:"lines"`
	Tables     []azureTable `json:"tables"`
}

type azureLine struct {
	Content string `json:"content"`
}

type azureTable struct {
	Cells           []azureCell   `json:"cells"`
	BoundingRegions []azureRegion `json:"boundingRegions"`
}

type azureCell struct {
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	Content     string `json:"content"`
}

type azureRegion struct {
	PageNumber int `json:"pageNumber"`
}

type azureKeyValue struct {
	Key   *azureElement `json:"key"`
	Value *azureElement `json:"value"`
}

type azureElement struct {
	Content string `json:"content"`
}

type azureDocument struct {
	DocType string                `json:"docType"`
	Fields  map[string]azureField `json:"fields"`
}

type azureField struct {
	Type          string                `json:"type"`
	Content       string                `json:"content"`
	ValueString   *string               `json:"valueString"`
	ValueNumber   *float64              `json:"valueNumber"`
	ValueInteger  *int64                `json:"valueInteger"`
	ValueDate     *string               `json:"valueDate"`
	ValueTime     *string               `json:"valueTime"`
	ValuePhone    *string               `json:"valuePhoneNumber"`
	ValueCountry  *string               `json:"valueCountryRegion"`
	ValueCurrency *azureCurrency        `json:"valueCurrency"`
	ValueArray    []azureField          `json:"valueArray"`
	ValueObject   map[string]azureField `json:"valueObject"`
}

type azureCurrency struct {
	Amount       *float64 `json:"amount"`
	CurrencyCode string   `json:"currencyCode"`
}

// DecodeAzure reads an Azure Document Intelligence analyze result (prebuilt
// invoice model) from JSON.
func DecodeAzure(r io.Reader) (*Result, error) {
	const op = "DecodeAzure"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapDecodeError(op, err, "failed to read input")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, WrapDecodeError(op, ErrEmptyInput, "")
	}

	var env azureEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, WrapDecodeError(op, ErrUnsupportedInput, err.Error())
	}

	raw := env.azureResult
	if env.AnalyzeResult != nil {
		raw = *env.AnalyzeResult
	}
	return raw.toResult(), nil
}

func (a azureResult) toResult() *Result {
	res := &Result{}

	for _, d := range a.Documents {
		doc := Document{Fields: make(map[string]Field, len(d.Fields))}
		for name, f := range d.Fields {
			doc.Fields[name] = f.toField()
		}
		res.Documents = append(res.Documents, doc)
	}

	for _, kv := range a.KeyValuePairs {
		pair := KeyValuePair{}
		if kv.Key != nil {
			k := kv.Key.Content
			pair.Key = &k
		}
		if kv.Value != nil {
			v := kv.Value.Content
			pair.Value = &v
		}
		res.KeyValuePairs = append(res.KeyValuePairs, pair)
	}

	for i, p := range a.Pages {
		page := Page{Number: p.PageNumber}
		if page.Number == 0 {
			page.Number = i + 1
		}
		for _, l := range p.Lines {
			page.Lines = append(page.Lines, l.Content)
		}
		for _, t := range p.Tables {
			page.Tables = append(page.Tables, t.toTable())
		}
		res.Pages = append(res.Pages, page)
	}

	// Without per-page lines the flattened content is the only text source.
	if len(res.TextLines()) == 0 && strings.TrimSpace(a.Content) != "" {
		if len(res.Pages) == 0 {
			res.Pages = append(res.Pages, Page{Number: 1})
		}
		res.Pages[0].Lines = splitLines(a.Content)
	}

	for _, t := range a.Tables {
		pageNumber := 1
		if len(t.BoundingRegions) > 0 && t.BoundingRegions[0].PageNumber > 0 {
			pageNumber = t.BoundingRegions[0].PageNumber
		}
		res.addTable(pageNumber, t.toTable())
	}

	return res
}

func (res *Result) addTable(pageNumber int, t Table) {
	for i := range res.Pages {
		if res.Pages[i].Number == pageNumber {
			res.Pages[i].Tables = append(res.Pages[i].Tables, t)
			return
		}
	}
	res.Pages = append(res.Pages, Page{Number: pageNumber, Tables: []Table{t}})
}

func (t azureTable) toTable() Table {
	table := Table{Cells: make([]Cell, 0, len(t.Cells))}
	for _, c := range t.Cells {
		table.Cells = append(table.Cells, Cell{
			RowIndex:    c.RowIndex,
			ColumnIndex: c.ColumnIndex,
			Content:     c.Content,
		})
	}
	return table
}

func (f azureField) toField() Field {
	field := Field{Content: f.Content}

	switch {
	case f.ValueString != nil:
		field.Value = *f.ValueString
	case f.ValueCurrency != nil && f.ValueCurrency.Amount != nil:
		field.Value = formatFloat(*f.ValueCurrency.Amount)
	case f.ValueNumber != nil:
		field.Value = formatFloat(*f.ValueNumber)
	case f.ValueInteger != nil:
		field.Value = strconv.FormatInt(*f.ValueInteger, 10)
	case f.ValueDate != nil:
		field.Value = *f.ValueDate
	case f.ValueTime != nil:
		field.Value = *f.ValueTime
	case f.ValuePhone != nil:
		field.Value = *f.ValuePhone
	case f.ValueCountry != nil:
		field.Value = *f.ValueCountry
	}

	for _, entry := range f.ValueArray {
		if entry.ValueObject == nil {
			continue
		}
		item := make(map[string]Field, len(entry.ValueObject))
		for name, sub := range entry.ValueObject {
			item[name] = sub.toField()
		}
		field.Items = append(field.Items, item)
	}

	return field
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
