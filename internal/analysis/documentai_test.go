package analysis_test

import (
	"reflect"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/genproto/googleapis/type/date"
	"google.golang.org/genproto/googleapis/type/money"

	"invoicenorm/internal/analysis"
)

func segment(start, end int64) *documentaipb.Document_Page_Layout {
	return &documentaipb.Document_Page_Layout{
		TextAnchor: &documentaipb.Document_TextAnchor{
			TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
				{StartIndex: start, EndIndex: end},
			},
		},
	}
}

func moneyEntity(kind, mention string, units int64, nanos int32) *documentaipb.Document_Entity {
	return &documentaipb.Document_Entity{
		Type:        kind,
		MentionText: mention,
		NormalizedValue: &documentaipb.Document_Entity_NormalizedValue{
			StructuredValue: &documentaipb.Document_Entity_NormalizedValue_MoneyValue{
				MoneyValue: &money.Money{CurrencyCode: "EUR", Units: units, Nanos: nanos},
			},
		},
	}
}

func TestFromDocumentAI(t *testing.T) {
	// Offsets: "FEDA Energia" [0,12), "Hosting" [13,20), "43,80" [21,26).
	text := "FEDA Energia\nHosting\n43,80\n"

	doc := &documentaipb.Document{
		Text: text,
		Entities: []*documentaipb.Document_Entity{
			{Type: "supplier_name", MentionText: " FEDA Energia "},
			{Type: "supplier_name", MentionText: "ignored duplicate"},
			{Type: "unknown_entity", MentionText: "dropped"},
			{
				Type:        "invoice_date",
				MentionText: "15/03/2024",
				NormalizedValue: &documentaipb.Document_Entity_NormalizedValue{
					StructuredValue: &documentaipb.Document_Entity_NormalizedValue_DateValue{
						DateValue: &date.Date{Year: 2024, Month: 3, Day: 15},
					},
				},
			},
			moneyEntity("total_amount", "43,80 €", 43, 800000000),
			{
				Type: "line_item",
				Properties: []*documentaipb.Document_Entity{
					{Type: "line_item/description", MentionText: "Hosting"},
					moneyEntity("line_item/amount", "43,80", 43, 800000000),
				},
			},
		},
		Pages: []*documentaipb.Document_Page{
			{
				PageNumber: 1,
				Lines: []*documentaipb.Document_Page_Line{
					{Layout: segment(0, 12)},
					{Layout: segment(13, 20)},
					{Layout: segment(40, 50)}, // out of range
				},
				Tables: []*documentaipb.Document_Page_Table{
					{
						HeaderRows: []*documentaipb.Document_Page_Table_TableRow{
							{Cells: []*documentaipb.Document_Page_Table_TableCell{
								{Layout: segment(13, 20), ColSpan: 2},
								{Layout: segment(21, 26)},
							}},
						},
						BodyRows: []*documentaipb.Document_Page_Table_TableRow{
							{Cells: []*documentaipb.Document_Page_Table_TableCell{
								{Layout: segment(13, 20)},
								{Layout: segment(21, 26)},
							}},
						},
					},
				},
				FormFields: []*documentaipb.Document_Page_FormField{
					{FieldName: segment(0, 4), FieldValue: segment(5, 12)},
				},
			},
		},
	}

	res := analysis.FromDocumentAI(doc)

	structured, ok := res.StructuredDocument()
	if !ok {
		t.Fatal("StructuredDocument() = false, want true")
	}
	wantFields := map[string]string{
		"VendorName":   "FEDA Energia",
		"InvoiceDate":  "2024-03-15",
		"InvoiceTotal": "43.8",
	}
	for name, want := range wantFields {
		if got := structured.Fields[name].Text(); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if got := structured.Fields["InvoiceDate"].Content; got != "15/03/2024" {
		t.Errorf("InvoiceDate content = %q", got)
	}
	if len(structured.Fields) != len(wantFields)+1 {
		t.Errorf("fields = %v, want %d entries", structured.Fields, len(wantFields)+1)
	}

	items := structured.Fields["Items"].Items
	if len(items) != 1 || items[0]["Description"].Text() != "Hosting" || items[0]["Amount"].Value != "43.8" {
		t.Errorf("Items = %+v", items)
	}

	if got := res.TextLines(); !reflect.DeepEqual(got, []string{"FEDA Energia", "Hosting"}) {
		t.Errorf("TextLines() = %q", got)
	}

	// The header cell spans two columns, so the next one starts at index 2.
	wantGrid := [][]string{
		{"Hosting", "", "43,80"},
		{"Hosting", "43,80", ""},
	}
	if got := res.Tables(); !reflect.DeepEqual(got, [][][]string{wantGrid}) {
		t.Errorf("Tables() = %q, want %q", got, wantGrid)
	}

	if len(res.KeyValuePairs) != 1 || *res.KeyValuePairs[0].Key != "FEDA" || *res.KeyValuePairs[0].Value != "Energia" {
		t.Errorf("KeyValuePairs = %+v", res.KeyValuePairs)
	}
}

func TestFromDocumentAITextFallback(t *testing.T) {
	res := analysis.FromDocumentAI(&documentaipb.Document{Text: "Ticket\n\nTotal 5,00\n"})

	if _, ok := res.StructuredDocument(); ok {
		t.Error("StructuredDocument() = true, want false")
	}
	if got := res.TextLines(); !reflect.DeepEqual(got, []string{"Ticket", "Total 5,00"}) {
		t.Errorf("TextLines() = %q", got)
	}
}

func TestFromDocumentAINil(t *testing.T) {
	res := analysis.FromDocumentAI(nil)
	if res == nil || len(res.Pages) != 0 || len(res.Documents) != 0 {
		t.Errorf("FromDocumentAI(nil) = %+v, want empty result", res)
	}
}
