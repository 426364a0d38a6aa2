package analysis

import "cloud.google.com/go/vision/v2/apiv1/visionpb"

// FromVision converts Vision document-text-detection responses, one per page,
// into a Result carrying only OCR lines. Pages without a text annotation keep
// their number but have no lines.
func FromVision(pages []*visionpb.AnnotateImageResponse) *Result {
	res := &Result{}
	for i, p := range pages {
		page := Page{Number: i + 1}
		if ic := p.GetContext(); ic.GetPageNumber() > 0 {
			page.Number = int(ic.GetPageNumber())
		}
		if text := p.GetFullTextAnnotation().GetText(); text != "" {
			page.Lines = splitLines(text)
		}
		res.Pages = append(res.Pages, page)
	}
	return res
}
