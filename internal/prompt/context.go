package prompt

import (
	"strings"

	"github.com/xuanlung-gov/tthc-assistant/internal/catalog"
)

// field is one "label: value" line; empty values are kept so the generator
// always sees the same field set.
type field struct {
	label string
	value string
}

func render(groups ...[]field) string {
	var sb strings.Builder
	for i, group := range groups {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, f := range group {
			sb.WriteString(f.label)
			sb.WriteString(": ")
			sb.WriteString(f.value)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ProcedureContext renders every procedure field in a fixed order, keyed by
// sheet column names. agency1 and agency2 replace the raw agency values.
func ProcedureContext(p catalog.Procedure, agency1, agency2 string) string {
	return render(
		[]field{
			{catalog.ColProcedureName, p.Name},
			{catalog.ColProcedureCode, p.Code},
			{catalog.ColAgency1, agency1},
			{catalog.ColAgency2, agency2},
		},
		[]field{
			{catalog.ColDocument1, p.Documents[0]},
			{catalog.ColDocument2, p.Documents[1]},
			{catalog.ColDocument3, p.Documents[2]},
		},
		[]field{
			{catalog.ColStep1, p.Steps[0]},
			{catalog.ColStep2, p.Steps[1]},
			{catalog.ColStep3, p.Steps[2]},
		},
		[]field{
			{catalog.ColFee, p.Fee},
			{catalog.ColProcessingTime, p.ProcessingTime},
		},
		[]field{
			{catalog.ColDetailLink, p.DetailLink},
			{catalog.ColFormLink1, p.FormLinks[0]},
			{catalog.ColFormLink2, p.FormLinks[1]},
			{catalog.ColOnlineLink, p.OnlineLink},
			{catalog.ColNote, p.Note},
		},
	)
}

// DocumentContext renders every document field under a fixed heading.
func DocumentContext(d catalog.Document) string {
	return "[CONTEXT TÀI LIỆU]\n" + render(
		[]field{
			{"- Tiêu đề", d.Title},
			{"- Loại", d.Category},
			{"- Từ khóa", d.Keywords},
			{"- Mô tả ngắn", d.ShortDescription},
			{"- Nội dung chính", d.MainContent},
		},
		[]field{
			{"- Link gốc", d.SourceLink},
			{"- Link tài liệu Drive", d.DocumentLink},
			{"- Ghi chú", d.Note},
		},
	)
}

// AppendLinks adds the document's links after the reply. Links are added
// even when the reply already mentions them.
func AppendLinks(reply string, d catalog.Document) string {
	var links []string
	if d.SourceLink != "" {
		links = append(links, "🔗 Link gốc: "+d.SourceLink)
	}
	if d.DocumentLink != "" {
		links = append(links, "📄 Tài liệu chi tiết: "+d.DocumentLink)
	}
	if len(links) == 0 {
		return reply
	}
	return reply + "\n\n" + strings.Join(links, "\n")
}
