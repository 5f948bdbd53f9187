// Package catalog holds the two record sets served by the assistant
// (administrative procedures and knowledge documents), their decoding from
// feed rows, and the strategies used to pick one record for a question.
package catalog

import (
	"github.com/xuanlung-gov/tthc-assistant/internal/feed"
	"github.com/xuanlung-gov/tthc-assistant/internal/stringutil"
)

// Procedure sheet columns.
const (
	ColProcedureName  = "ten_thu_tuc"
	ColProcedureCode  = "ma_thu_tuc"
	ColSearchKeywords = "tu_khoa_tim_kiem"
	ColAgency1        = "co_quan_1"
	ColAgency2        = "co_quan_2"
	ColDocument1      = "giay_to_1"
	ColDocument2      = "giay_to_2"
	ColDocument3      = "giay_to_3"
	ColStep1          = "buoc_1"
	ColStep2          = "buoc_2"
	ColStep3          = "buoc_3"
	ColFee            = "le_phi"
	ColProcessingTime = "thoi_gian_giai_quyet"
	ColDetailLink     = "link_chi_tiet"
	ColFormLink1      = "link_mau_1"
	ColFormLink2      = "link_mau_2"
	ColOnlineLink     = "link_dang_ky_online"
	ColNote           = "ghi_chu"
)

// Knowledge base sheet columns. ghi_chu is shared with the procedure sheet.
const (
	ColTitle            = "tieu_de"
	ColCategory         = "loai"
	ColKeywords         = "tu_khoa"
	ColShortDescription = "mo_ta_ngan"
	ColMainContent      = "noi_dung_chinh"
	ColSourceLink       = "link_goc"
	ColDocumentLink     = "link_tai_lieu"
)

// Procedure is one administrative procedure. Agency fields are raw sheet
// values; they are normalized only when rendered.
type Procedure struct {
	Name           string
	Code           string
	Keywords       string // semicolon-delimited
	Agency1        string
	Agency2        string
	Documents      [3]string
	Steps          [3]string
	Fee            string
	ProcessingTime string
	DetailLink     string
	FormLinks      [2]string
	OnlineLink     string
	Note           string
}

// KeywordList returns the non-empty keyword phrases.
func (p Procedure) KeywordList() []string {
	return stringutil.SplitKeywords(p.Keywords)
}

// Document is one knowledge base entry.
type Document struct {
	Title            string
	Category         string
	Keywords         string // semicolon-delimited
	ShortDescription string
	MainContent      string
	SourceLink       string
	DocumentLink     string
	Note             string
}

// KeywordList returns the non-empty keyword phrases.
func (d Document) KeywordList() []string {
	return stringutil.SplitKeywords(d.Keywords)
}

// DecodeProcedures maps rows to procedures, skipping rows without a name.
func DecodeProcedures(rows []feed.Row) []Procedure {
	out := make([]Procedure, 0, len(rows))
	for _, r := range rows {
		p := Procedure{
			Name:           r.Get(ColProcedureName),
			Code:           r.Get(ColProcedureCode),
			Keywords:       r.Get(ColSearchKeywords),
			Agency1:        r.Get(ColAgency1),
			Agency2:        r.Get(ColAgency2),
			Documents:      [3]string{r.Get(ColDocument1), r.Get(ColDocument2), r.Get(ColDocument3)},
			Steps:          [3]string{r.Get(ColStep1), r.Get(ColStep2), r.Get(ColStep3)},
			Fee:            r.Get(ColFee),
			ProcessingTime: r.Get(ColProcessingTime),
			DetailLink:     r.Get(ColDetailLink),
			FormLinks:      [2]string{r.Get(ColFormLink1), r.Get(ColFormLink2)},
			OnlineLink:     r.Get(ColOnlineLink),
			Note:           r.Get(ColNote),
		}
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// DecodeDocuments maps rows to documents, skipping rows with no content.
// HTML in the main content is reduced to text.
func DecodeDocuments(rows []feed.Row) []Document {
	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		d := Document{
			Title:            r.Get(ColTitle),
			Category:         r.Get(ColCategory),
			Keywords:         r.Get(ColKeywords),
			ShortDescription: r.Get(ColShortDescription),
			MainContent:      HTMLToText(r.Get(ColMainContent)),
			SourceLink:       r.Get(ColSourceLink),
			DocumentLink:     r.Get(ColDocumentLink),
			Note:             r.Get(ColNote),
		}
		if d == (Document{}) {
			continue
		}
		out = append(out, d)
	}
	return out
}
